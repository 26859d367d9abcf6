package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborprint/optiontree"
	"github.com/harborprint/optiontree/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store optiontree.Store = postgres.New(pool)
	lc := optiontree.NewLifecycle(store, nil)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Open a draft for a product ────────────────────────────────────
	draft, err := lc.CreateDraft(ctx, "business-cards")
	if err != nil {
		log.Fatalf("create draft: %v", err)
	}
	fmt.Printf("draft opened: %s\n", draft.ID)

	// ── Build the option graph with patches ───────────────────────────
	doc, paperID := optiontree.AddGroup(draft)
	label := "Paper Stock"
	required := true
	doc = optiontree.UpdateGroup(doc, paperID, optiontree.GroupFields{
		Label:    &label,
		Required: &required,
	})

	doc, mattID := optiontree.AddOption(doc, paperID)
	mattLabel := "Matte 350gsm"
	isDefault := true
	doc = optiontree.UpdateOption(doc, mattID, optiontree.OptionFields{
		Label:     &mattLabel,
		IsDefault: &isDefault,
	})

	doc, glossID := optiontree.AddOption(doc, paperID)
	glossLabel := "Gloss 350gsm"
	doc = optiontree.UpdateOption(doc, glossID, optiontree.OptionFields{
		Label: &glossLabel,
	})

	if _, err := lc.PatchDraft(ctx, draft.ID, doc); err != nil {
		log.Fatalf("patch draft: %v", err)
	}
	fmt.Println("draft patched")

	// ── Validate, then publish ────────────────────────────────────────
	report := optiontree.Validate(doc)
	fmt.Printf("validation: %d error(s), %d warning(s)\n",
		len(report.Errors), len(report.Warnings))

	res, err := lc.Publish(ctx, draft.ID, false)
	if err != nil {
		log.Fatalf("publish: %v", err)
	}
	if res.RequiresWarningsConfirm {
		fmt.Println("publish needs warnings confirmation:")
		printJSON(res.Findings)
		if res, err = lc.Publish(ctx, draft.ID, true); err != nil {
			log.Fatalf("publish confirmed: %v", err)
		}
	}
	fmt.Printf("published: %v\n", res.Published)

	// ── Read back draft + active ──────────────────────────────────────
	newDraft, active, err := lc.Trees(ctx, "business-cards")
	if err != nil {
		log.Fatalf("trees: %v", err)
	}
	fmt.Printf("\nactive tree %s, roots %v; fresh draft %s\n",
		active.ID, active.Roots(), newDraft.ID)

	// ── Project the editor view ───────────────────────────────────────
	fmt.Println("\neditor view of active tree:")
	printJSON(optiontree.ProjectEditorView(active))
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
