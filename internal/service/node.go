package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/domain"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/model"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/storage"
)

// fileURLExpiry bounds the lifetime of presigned download URLs for
// repository files.
const fileURLExpiry = 1 * time.Hour

// CreateFileRequest carries everything needed to add a file to the
// repository: the metadata and the content stream.
type CreateFileRequest struct {
	ParentID         *string
	Title            string
	ProductID        *string
	Reader           io.Reader
	OriginalFilename string
	ContentType      string
	Size             int64
}

// Validate checks the request against the repository rules.
func (r CreateFileRequest) Validate() error {
	if r.Reader == nil {
		return &domain.ValidationError{Field: "file", Message: "file is required"}
	}
	if err := validation.Validate(r.Title, validation.Required, validation.Length(1, 200)); err != nil {
		return &domain.ValidationError{Field: "title", Message: err.Error()}
	}
	return nil
}

// NodeService manages the file-repository hierarchy: folders, files and
// their reorganization. Folder deletion cascades through the database;
// descendant file blobs are not individually removed (an accepted leak,
// matching the cascade semantics of the backing store).
type NodeService interface {
	// ListChildren returns the children of the folder, or the root-level
	// nodes when folderID is nil. An empty folder is an empty list, not an
	// error.
	ListChildren(ctx context.Context, folderID *string) ([]model.Node, error)

	// CreateFolder adds a folder under the given parent (nil = root).
	CreateFolder(ctx context.Context, parentID *string, title string) (*model.Node, error)

	// CreateFile uploads the content to object storage first, then persists
	// the metadata row referencing the resulting key. If the metadata write
	// fails after a successful upload the orphaned object is NOT cleaned up.
	CreateFile(ctx context.Context, req CreateFileRequest) (*model.Node, error)

	// Rename changes a node's title.
	Rename(ctx context.Context, id, title string) error

	// Move reparents a node. Moving a node under itself is a silent no-op;
	// moving a folder under one of its own descendants is rejected.
	Move(ctx context.Context, id string, newParentID *string) error

	// Delete removes a node. For files the blob is removed from object
	// storage before the metadata row; for folders descendant rows are
	// removed by the database cascade.
	Delete(ctx context.Context, id string) error

	// FileURL resolves a file node's storage key to a presigned download URL.
	FileURL(ctx context.Context, id string) (string, error)
}

type nodeService struct {
	repo   repository.NodeRepository
	store  storage.Storage
	logger *zap.Logger
}

// NewNodeService constructs a new NodeService.
func NewNodeService(repo repository.NodeRepository, store storage.Storage, logger *zap.Logger) NodeService {
	return &nodeService{repo: repo, store: store, logger: logger}
}

func (s *nodeService) ListChildren(ctx context.Context, folderID *string) ([]model.Node, error) {
	items, err := s.repo.ListChildren(ctx, folderID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list children", Err: err}
	}
	return items, nil
}

func (s *nodeService) CreateFolder(ctx context.Context, parentID *string, title string) (*model.Node, error) {
	if err := validation.Validate(title, validation.Required, validation.Length(1, 200)); err != nil {
		return nil, &domain.ValidationError{Field: "title", Message: err.Error()}
	}

	n := &model.Node{
		ID:        uuid.New().String(),
		Title:     title,
		IsFolder:  true,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create folder", Err: err}
	}

	s.logger.Info("folder created",
		zap.String("id", stored.ID),
		zap.String("title", stored.Title),
		zap.Stringp("parent_id", stored.ParentID),
	)
	return stored, nil
}

func (s *nodeService) CreateFile(ctx context.Context, req CreateFileRequest) (*model.Node, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ext := filepath.Ext(req.OriginalFilename)
	key := filepath.ToSlash(filepath.Join("insumos", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, req.Reader, storage.PutObjectOptions{
		Size:        req.Size,
		ContentType: req.ContentType,
		Metadata: map[string]string{
			"original-filename": req.OriginalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	n := &model.Node{
		ID:        uuid.New().String(),
		Title:     req.Title,
		IsFolder:  false,
		ParentID:  req.ParentID,
		FileURL:   objInfo.Key,
		FileType:  req.ContentType,
		FileSize:  objInfo.Size,
		ProductID: req.ProductID,
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, n)
	if err != nil {
		// The uploaded object is left behind on purpose: there is no
		// compensating transaction for this path.
		s.logger.Warn("file metadata write failed, object orphaned",
			zap.String("key", objInfo.Key),
			zap.Error(err),
		)
		return nil, &domain.PersistenceError{Op: "create file", Err: err}
	}

	s.logger.Info("file created",
		zap.String("id", stored.ID),
		zap.String("title", stored.Title),
		zap.String("key", objInfo.Key),
		zap.Int64("size", stored.FileSize),
	)
	return stored, nil
}

func (s *nodeService) Rename(ctx context.Context, id, title string) error {
	if err := validation.Validate(title, validation.Required, validation.Length(1, 200)); err != nil {
		return &domain.ValidationError{Field: "title", Message: err.Error()}
	}
	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "rename node", Err: err}
	}
	return nil
}

func (s *nodeService) Move(ctx context.Context, id string, newParentID *string) error {
	// Dropping a node onto itself is ignored at the gesture level.
	if newParentID != nil && *newParentID == id {
		return nil
	}

	if newParentID != nil {
		parent, err := s.repo.FindByID(ctx, *newParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return &domain.PersistenceError{Op: "move node", Err: err}
		}
		if !parent.IsFolder {
			return &domain.ValidationError{Field: "parent_id", Message: "target is not a folder"}
		}
		if err := s.ensureNoCycle(ctx, id, parent); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateParent(ctx, id, newParentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "move node", Err: err}
	}

	s.logger.Info("node moved", zap.String("id", id), zap.Stringp("parent_id", newParentID))
	return nil
}

// ensureNoCycle walks the ancestor chain of the target folder and rejects
// the move when the node being moved appears in it. A folder may never
// become its own descendant.
func (s *nodeService) ensureNoCycle(ctx context.Context, id string, target *model.Node) error {
	current := target
	for {
		if current.ID == id {
			return &domain.ValidationError{
				Field:   "parent_id",
				Message: "cannot move a folder under its own descendant",
			}
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.repo.FindByID(ctx, *current.ParentID)
		if err != nil {
			return &domain.PersistenceError{Op: "move node", Err: err}
		}
		current = next
	}
}

func (s *nodeService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return &domain.PersistenceError{Op: "delete node", Err: err}
	}

	if !n.IsFolder && n.FileURL != "" {
		// Remove the blob first; if this fails the row stays so the
		// reference is not lost.
		if err := s.store.Delete(ctx, n.FileURL); err != nil {
			return fmt.Errorf("delete file object: %w", err)
		}
	}

	// Folder descendants go with the row via the database cascade. Their
	// blobs are not removed here.
	if err := s.repo.Delete(ctx, id); err != nil {
		return &domain.PersistenceError{Op: "delete node", Err: err}
	}

	s.logger.Info("node deleted", zap.String("id", id), zap.Bool("is_folder", n.IsFolder))
	return nil
}

func (s *nodeService) FileURL(ctx context.Context, id string) (string, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", &domain.PersistenceError{Op: "get node", Err: err}
	}
	if n.IsFolder || n.FileURL == "" {
		return "", &domain.ValidationError{Field: "id", Message: "node has no file"}
	}

	url, err := s.store.PresignGet(ctx, n.FileURL, fileURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign file: %w", err)
	}
	return url, nil
}
