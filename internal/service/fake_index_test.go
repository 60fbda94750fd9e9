package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/timmy/docclass/internal/domain"
	"github.com/timmy/docclass/internal/repository"
)

// fakeIndex is an in-memory DocumentIndex. Writes are recorded but not
// applied, so the unclassified set never shrinks during a run.
type fakeIndex struct {
	mu       sync.Mutex
	docs     []domain.Document
	pageCap  int
	searches []repository.SearchQuery
	batches  [][]domain.DocumentUpdate
	singles  []domain.DocumentUpdate

	countErr  error
	searchErr map[int]error
	batchFn   func(call int, updates []domain.DocumentUpdate) (repository.BatchResult, error)
	onSearch  func(q repository.SearchQuery)
	oneErr    error
	facets    *domain.IndexStats
	facetErr  error
}

func newFakeIndex(docs []domain.Document) *fakeIndex {
	return &fakeIndex{docs: docs, searchErr: map[int]error{}}
}

func (f *fakeIndex) Search(ctx context.Context, q repository.SearchQuery) (*repository.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.onSearch != nil {
		f.onSearch(q)
	}

	if q.Top == 0 && f.countErr != nil {
		return nil, f.countErr
	}
	if q.Top > 0 {
		if err, ok := f.searchErr[q.Skip]; ok {
			return nil, err
		}
	}

	var matched []domain.Document
	for _, d := range f.docs {
		if q.UnclassifiedOnly && d.IsClassified() {
			continue
		}
		matched = append(matched, d)
	}

	page := &repository.SearchPage{Total: len(matched)}
	if q.Top == 0 || q.Skip >= len(matched) {
		return page, nil
	}
	top := q.Top
	if f.pageCap > 0 && f.pageCap < top {
		top = f.pageCap
	}
	end := q.Skip + top
	if end > len(matched) {
		end = len(matched)
	}
	page.Documents = append([]domain.Document(nil), matched[q.Skip:end]...)
	return page, nil
}

func (f *fakeIndex) UpdateOne(ctx context.Context, u domain.DocumentUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singles = append(f.singles, u)
	return f.oneErr
}

func (f *fakeIndex) UpdateBatch(ctx context.Context, updates []domain.DocumentUpdate) (repository.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return repository.AllFailed(len(updates)), err
	}
	f.batches = append(f.batches, append([]domain.DocumentUpdate(nil), updates...))
	if f.batchFn != nil {
		return f.batchFn(len(f.batches), updates)
	}
	return repository.BatchResult{Succeeded: len(updates)}, nil
}

func (f *fakeIndex) FacetStats(ctx context.Context) (*domain.IndexStats, error) {
	if f.facetErr != nil {
		return nil, f.facetErr
	}
	return f.facets, nil
}

func (f *fakeIndex) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.batches))
	for i, b := range f.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func (f *fakeIndex) pageQueries() []repository.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pages []repository.SearchQuery
	for _, q := range f.searches {
		if q.Top > 0 {
			pages = append(pages, q)
		}
	}
	return pages
}

// makeDocs builds n unclassified documents that spread over a few categories.
func makeDocs(n int) []domain.Document {
	names := []string{
		"2024 Operating Budget.pdf",
		"January Board Meeting Minutes.pdf",
		"random_file.pdf",
		"Resident Directory.pdf",
		"R0460131L0199873_statement.pdf",
	}
	docs := make([]domain.Document, n)
	for i := range docs {
		docs[i] = domain.Document{
			ID:   fmt.Sprintf("doc-%03d", i),
			Name: names[i%len(names)],
			Path: "/sites/AssociationDocs/Oak Ridge/",
		}
	}
	return docs
}
