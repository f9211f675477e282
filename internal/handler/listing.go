package handler

import (
    "context"

    "github.com/iliyamo/tourism-portal/internal/model"
)

// ListingStore is the CRUD surface shared by the attraction, activity and
// accommodation repositories.
type ListingStore[T any] interface {
    List(ctx context.Context, activeOnly bool) ([]*T, error)
    GetByID(ctx context.Context, id uint64) (*T, error)
    Create(ctx context.Context, v *T) error
    Update(ctx context.Context, v *T) error
    Delete(ctx context.Context, id uint64) error
}

type (
    AttractionStore    = ListingStore[model.Attraction]
    ActivityStore      = ListingStore[model.Activity]
    AccommodationStore = ListingStore[model.Accommodation]
)

// ActiveCounter counts publicly visible rows.
type ActiveCounter interface {
    CountActive(ctx context.Context) (int, error)
}

func nonNil[T any](items []*T) []*T {
    if items == nil {
        return []*T{}
    }
    return items
}
