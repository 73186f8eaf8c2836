package mindvault

import (
	domitem "github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/result"
)

func fromInternalItem(it *domitem.Item) Item {
	out := Item{
		ID:           it.ID(),
		Title:        it.Title(),
		URL:          it.URL(),
		FileURL:      it.FileURL(),
		ImageURL:     it.ImageURL(),
		Type:         string(it.Type()),
		Reason:       it.Reason(),
		TopicAuto:    it.TopicAuto(),
		TopicUser:    append([]string(nil), it.TopicUser()...),
		Category:     it.Category(),
		Keywords:     append([]string(nil), it.Keywords()...),
		Summary:      it.Summary(),
		Platform:     it.Platform(),
		SelectedText: it.SelectedText(),
		Description:  it.Description(),
		CreatedAt:    it.CreatedAt(),
	}
	if p, ok := it.Price(); ok {
		out.Price = &p
	}
	return out
}

func fromInternalResponse(resp *result.Response) SearchResponse {
	out := SearchResponse{
		Query:           resp.Query,
		Mode:            string(resp.Mode),
		DetectedFilters: resp.DetectedFilters,
		Results:         make([]SearchResult, len(resp.Results)),
	}
	for i := range resp.Results {
		it := resp.Results[i].Item()
		out.Results[i] = SearchResult{
			Item:       fromInternalItem(&it),
			Similarity: resp.Results[i].Score(),
		}
	}
	return out
}
