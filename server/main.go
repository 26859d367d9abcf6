package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborprint/optiontree"
	"github.com/harborprint/optiontree/postgres"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var store optiontree.Store = postgres.New(pool)
	lc := optiontree.NewLifecycle(store, logger)

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "message": "schema created"})
	})

	// ── Drafts ────────────────────────────────────────────────────────
	app.Post("/products/:productId/tree/draft", func(c fiber.Ctx) error {
		draft, err := lc.CreateDraft(c.Context(), c.Params("productId"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"draft": draft}})
	})

	app.Get("/products/:productId/tree", func(c fiber.Ctx) error {
		draft, active, err := lc.Trees(c.Context(), c.Params("productId"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"draft": draft, "active": active}})
	})

	// Full-document replace: the client computes patches locally and submits
	// the resulting document. Legacy shapes (map-keyed nodes/edges) are
	// normalized on decode.
	app.Patch("/tree-versions/:draftId", func(c fiber.Ctx) error {
		var body struct {
			TreeJSON json.RawMessage `json:"treeJson"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid body"})
		}
		raw := bytes.TrimSpace(body.TreeJSON)
		if len(raw) > 0 && raw[0] == '"' {
			// Some clients double-encode the document as a JSON string.
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				raw = []byte(s)
			}
		}
		var doc optiontree.Tree
		if err := json.Unmarshal(raw, &doc); err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "invalid treeJson"})
		}
		draft, err := lc.PatchDraft(c.Context(), c.Params("draftId"), &doc)
		if errors.Is(err, optiontree.ErrTreeNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "tree not found"})
		}
		if errors.Is(err, optiontree.ErrNotDraft) {
			return c.Status(409).JSON(fiber.Map{"success": false, "error": "tree is not a draft"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"draft": draft}})
	})

	// ── Publish ───────────────────────────────────────────────────────
	app.Post("/tree-versions/:draftId/publish", func(c fiber.Ctx) error {
		confirm := c.Query("confirmWarnings") == "true"
		res, err := lc.Publish(c.Context(), c.Params("draftId"), confirm)
		var blocked *optiontree.PublishBlockedError
		if errors.As(err, &blocked) {
			return c.Status(422).JSON(fiber.Map{"success": false, "findings": blocked.Findings})
		}
		if errors.Is(err, optiontree.ErrTreeNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "tree not found"})
		}
		if errors.Is(err, optiontree.ErrNotDraft) {
			return c.Status(409).JSON(fiber.Map{"success": false, "error": "tree is not a draft"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		if res.RequiresWarningsConfirm {
			return c.JSON(fiber.Map{
				"success":                 true,
				"requiresWarningsConfirm": true,
				"findings":                res.Findings,
			})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	logger.Info("listening", "addr", addr)
	log.Fatal(app.Listen(addr))
}
