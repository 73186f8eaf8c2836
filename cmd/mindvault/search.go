package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mindvault/internal/domain/search/request"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
)

type searchFlags struct {
	owner  string
	limit  int
	sortBy string
	facets request.Facets
}

func newSearchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run one search and print the response as JSON",
		Example: `  mindvault search --owner alice headphones under 3000 from last month
  mindvault search --owner alice --type video --date-range week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			limit := f.limit
			if limit <= 0 {
				limit = cfg.Search.DefaultLimit
			}
			req, err := request.New(f.owner, strings.Join(args, " "), f.facets, limit,
				request.SortBy(f.sortBy), cfg.Search.Location())
			if err != nil {
				return err
			}

			resp, err := a.search.Search(cmd.Context(), &req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(renderSearch(&resp))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.owner, "owner", "", "owner key to search as (required)")
	flags.IntVar(&f.limit, "limit", 0, "maximum number of results")
	flags.StringVar(&f.sortBy, "sort", "", "order for unranked results: relevance, title or date")
	flags.StringVar(&f.facets.Type, "type", "", "item type")
	flags.StringVar(&f.facets.Reason, "reason", "", "intent label")
	flags.StringVar(&f.facets.Category, "category", "", "category")
	flags.StringVar(&f.facets.TopicAuto, "topic-auto", "", "machine-assigned topic")
	flags.StringVar(&f.facets.TopicUser, "topic-user", "", "user tag")
	flags.StringVar(&f.facets.DateRange, "date-range", "", "today, week, month, year or all")
	flags.StringVar(&f.facets.From, "from", "", "start date (YYYY-MM-DD)")
	flags.StringVar(&f.facets.To, "to", "", "end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

type printedResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url,omitempty"`
	Type       string   `json:"type"`
	Category   string   `json:"category"`
	Keywords   []string `json:"keywords,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	CreatedAt  string   `json:"createdAt"`
	Similarity float64  `json:"similarity"`
}

func renderSearch(resp *result.Response) map[string]any {
	results := make([]printedResult, len(resp.Results))
	for i := range resp.Results {
		it := resp.Results[i].Item()
		results[i] = printedResult{
			ID:         it.ID(),
			Title:      it.Title(),
			URL:        it.URL(),
			Type:       string(it.Type()),
			Category:   it.Category(),
			Keywords:   it.Keywords(),
			CreatedAt:  it.CreatedAt().Format(time.RFC3339),
			Similarity: resp.Results[i].Score(),
		}
		if p, ok := it.Price(); ok {
			results[i].Price = &p
		}
	}
	return map[string]any{
		"success":   true,
		"query":     resp.Query,
		"mode":      string(resp.Mode),
		"aiFilters": resp.DetectedFilters,
		"filters":   resp.Filters,
		"count":     len(results),
		"results":   results,
	}
}
