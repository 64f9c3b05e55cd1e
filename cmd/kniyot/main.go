// Command kniyot is a terminal shopper client: it opens a list session
// against a kniyotd server (or offline when none is configured) and runs one
// intent against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/orilam/kniyot/internal/logging"
	"github.com/orilam/kniyot/internal/sync"
)

func main() {
	var (
		serverURL = flag.String("server", os.Getenv("KNIYOT_SERVER_URL"), "kniyotd base URL (empty for offline mode)")
		listSlug  = flag.String("list", envOr("KNIYOT_LIST", "rosa-family"), "list slug")
		quantity  = flag.String("qty", "", "quantity text for add")
		comment   = flag.String("comment", "", "comment text for add")
		category  = flag.Int64("category", 0, "category id for manual add (0 for none)")
		suggest   = flag.Bool("suggest", false, "propose the manual item for the permanent catalog")
	)
	flag.Parse()

	logger := logging.Setup(os.Getenv("KNIYOT_LOG_LEVEL"))

	changes := make(chan struct{}, 1)
	engine := sync.New(sync.Config{
		ServerURL: *serverURL,
		Notify:    func(msg string) { fmt.Fprintln(os.Stderr, msg) },
		OnChange: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
		Logger: logger,
	})

	ctx := context.Background()
	engine.Open(ctx, *listSlug)
	defer engine.Close()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "show"
	}

	switch cmd {
	case "show":
		render(engine, flag.Arg(1))

	case "catalog":
		for _, item := range engine.Catalog().FilterItems(flag.Arg(1)) {
			fmt.Printf("  [%d] %s (%s)\n", item.ID, item.Name, engine.Catalog().CategoryName(&item.CategoryID))
		}

	case "add":
		id, err := strconv.ParseInt(flag.Arg(1), 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "usage: kniyot add <catalog-item-id>")
			os.Exit(2)
		}
		item, ok := engine.Catalog().ItemByID(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "no catalog item %d\n", id)
			os.Exit(1)
		}
		engine.AddFromCatalog(ctx, item, *quantity, *comment)
		render(engine, "")

	case "manual":
		name := flag.Arg(1)
		if name == "" {
			fmt.Fprintln(os.Stderr, "usage: kniyot manual <name>")
			os.Exit(2)
		}
		var categoryID *int64
		if *category != 0 {
			categoryID = category
		}
		engine.AddManual(ctx, name, categoryID, *quantity, *comment, *suggest)
		render(engine, "")

	case "buy":
		id := flag.Arg(1)
		if id == "" {
			fmt.Fprintln(os.Stderr, "usage: kniyot buy <item-id>")
			os.Exit(2)
		}
		engine.MarkBought(ctx, id)
		render(engine, "")

	case "watch":
		watch(engine, changes)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}
}

// render prints the grouped shopping view, optionally filtered.
func render(engine *sync.Engine, search string) {
	items := sync.Filter(engine.Items(), search)
	if len(items) == 0 {
		fmt.Println("הרשימה ריקה 🎉")
		return
	}
	for _, group := range sync.GroupByCategory(items, engine.Catalog()) {
		fmt.Printf("%s:\n", group.Category)
		for _, item := range group.Items {
			line := "  " + item.Name
			if item.Quantity != "" {
				line += " — " + item.Quantity
			}
			if item.Comment != "" {
				line += " (" + item.Comment + ")"
			}
			fmt.Printf("%s  [%s]\n", line, item.ID)
		}
	}
}

// watch re-renders on every reconciled change until interrupted.
func watch(engine *sync.Engine, changes <-chan struct{}) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	render(engine, "")
	for {
		select {
		case <-changes:
			fmt.Println("---")
			render(engine, "")
		case <-quit:
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
