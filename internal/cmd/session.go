package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/config"
	"github.com/gravitrone/quill/internal/logging"
	"github.com/gravitrone/quill/internal/workspace"
)

// session is the stored credential plus a client built from it.
type session struct {
	cfg    *config.Config
	client *api.Client
	log    *logrus.Logger
	closer io.Closer
}

// openSession loads the config and fails unless a token is stored.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	log, closer, err := logging.Open(config.LogPath(), cfg.Level())
	if err != nil {
		log, closer = logging.Discard(), nil
	}
	return &session{
		cfg:    cfg,
		client: api.NewClient(cfg.APIBaseURL(), cfg.Token, cfg.HTTPTimeout()),
		log:    log,
		closer: closer,
	}, nil
}

func (s *session) close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// workspace loads every folder and note into a fresh workspace.
func (s *session) workspace(ctx context.Context) (*workspace.Workspace, error) {
	ws := workspace.New(s.client, workspace.Options{
		Debounce:     s.cfg.DebounceDelay(),
		SavedDisplay: s.cfg.SavedDisplayDelay(),
		Logger:       s.log,
	})
	if err := ws.Load(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

// parseID parses a positional note, folder or file id.
func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}

// folderRef maps a --folder flag to a folder reference. Zero is the root.
func folderRef(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// folderLabel names the folder a note or file lives in.
func folderLabel(ws *workspace.Workspace, id *int64) string {
	if id == nil {
		return "-"
	}
	if f, ok := ws.Folder(*id); ok {
		return f.Name
	}
	return strconv.FormatInt(*id, 10)
}
