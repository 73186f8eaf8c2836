// Package mindvault embeds the vault in a Go program: items are stored in
// Redis, classified on save and found with natural language search, without
// running the HTTP server.
//
//	client, _ := mindvault.New(ctx,
//	    mindvault.WithRedis("localhost:6379", ""),
//	    mindvault.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	vault := client.Vault("alice")
//	_, _ = vault.Save(ctx, mindvault.SaveRequest{Title: "Sony WH-1000XM5", URL: "https://amazon.in/dp/B0"})
//	res, _ := vault.Search(ctx, mindvault.SearchRequest{Query: "headphones under 30000"})
//
// Without an embedder the vault ranks with deterministic pseudo vectors;
// without an oracle it detects filters and classifies with heuristics.
package mindvault
