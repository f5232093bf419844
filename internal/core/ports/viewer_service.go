package ports

import (
	"github.com/fsrp/document-portal/internal/core/domain"
)

// ViewerService keeps per-document viewer state.
type ViewerService interface {
	Document(id string) (domain.Document, bool)
	State(st *domain.Storage, doc string) domain.ViewerState
	Apply(st *domain.Storage, doc string, action domain.ViewerAction) (domain.ViewerState, error)
	Key(st *domain.Storage, doc, key string, ctrl bool) (domain.ViewerState, domain.ViewerAction, error)
	SetTotalPages(st *domain.Storage, doc string, total int) (domain.ViewerState, error)
}
