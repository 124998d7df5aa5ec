package store

import (
	"context"

	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/dataset"
)

type EVAStore interface {
	// ReplaceEVAs swaps the stored records for the given ones in a single transaction.
	ReplaceEVAs(ctx context.Context, records []dataset.Record) error

	SearchEVAs(
		ctx context.Context,
		filter string,
		orderBy []string,
		maxResults int,
		pageToken string,
	) (pagedList *PagedList[*contract.EVA], err *contract.Error)

	GetEVA(ctx context.Context, id string) (*contract.EVA, *contract.Error)

	// Summary aggregates the stored records per country.
	Summary(ctx context.Context) (*contract.Summary, *contract.Error)

	Close() error
}

type PagedList[T any] struct {
	Items         []T
	NextPageToken *string
}
