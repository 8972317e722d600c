package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
)

// TreeBrowser tracks the user's position in the file repository: the
// current folder and its fetched children. Navigation is a pure pointer
// change followed by a refresh against the node service.
//
// Each refresh carries a generation token captured at the time the fetch
// starts; a result whose generation no longer matches the browser's current
// generation is discarded, so a slow fetch from an abandoned navigation can
// never overwrite newer state.
type TreeBrowser struct {
	mu       sync.Mutex
	svc      NodeService
	current  *model.Node // nil = root
	children []model.Node
	gen      uint64
	logger   *zap.Logger
}

// NewTreeBrowser constructs a browser positioned at the root.
func NewTreeBrowser(svc NodeService, logger *zap.Logger) *TreeBrowser {
	return &TreeBrowser{svc: svc, logger: logger}
}

// NavigateInto enters a folder and refreshes its children.
func (b *TreeBrowser) NavigateInto(ctx context.Context, folderID string) error {
	b.mu.Lock()
	// Resolve the folder from the level being displayed so the breadcrumb
	// carries its title.
	var folder *model.Node
	for i := range b.children {
		if b.children[i].ID == folderID && b.children[i].IsFolder {
			n := b.children[i]
			folder = &n
			break
		}
	}
	if folder == nil {
		// Entered from outside the displayed level; keep a minimal pointer.
		folder = &model.Node{ID: folderID, IsFolder: true}
	}
	b.gen++
	b.current = folder
	b.mu.Unlock()

	return b.Refresh(ctx)
}

// NavigateUp returns to the root level. Only a single level of nesting is
// tracked, so "up" always means root.
func (b *TreeBrowser) NavigateUp(ctx context.Context) error {
	b.mu.Lock()
	b.gen++
	b.current = nil
	b.mu.Unlock()
	return b.Refresh(ctx)
}

// Refresh re-fetches the children of the current folder. Stale results
// (another navigation happened while the fetch was in flight) are dropped.
func (b *TreeBrowser) Refresh(ctx context.Context) error {
	b.mu.Lock()
	gen := b.gen
	var folderID *string
	if b.current != nil {
		id := b.current.ID
		folderID = &id
	}
	b.mu.Unlock()

	children, err := b.svc.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen != gen {
		b.logger.Debug("dropping stale folder listing",
			zap.Uint64("fetched_gen", gen),
			zap.Uint64("current_gen", b.gen),
		)
		return nil
	}
	b.children = children
	return nil
}

// Children returns a snapshot of the currently displayed nodes.
func (b *TreeBrowser) Children() []model.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Node, len(b.children))
	copy(out, b.children)
	return out
}

// Breadcrumb returns the navigation trail: empty at root, otherwise just
// the current folder. Deeper trails are not accumulated.
func (b *TreeBrowser) Breadcrumb() []model.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	return []model.Node{*b.current}
}

// Current returns the current folder, or nil at root.
func (b *TreeBrowser) Current() *model.Node {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	c := *b.current
	return &c
}
