package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"homeerp/internal/blob"
	"homeerp/pkg/domain"
)

// ExportPrefix is the blob key prefix under which snapshots are written.
const ExportPrefix = "exports/"

// ErrInvalidExportName rejects names that do not address a single export.
var ErrInvalidExportName = errors.New("invalid export name")

// Exporter writes point-in-time copies of every collection to a blob store.
type Exporter struct {
	service *Service
	blobs   blob.Store
	logger  *slog.Logger
	now     func() time.Time
	idFn    func() string
}

// NewExporter returns an exporter reading from svc and writing to store.
func NewExporter(svc *Service, store blob.Store) *Exporter {
	return &Exporter{
		service: svc,
		blobs:   store,
		logger:  svc.logger,
		now:     func() time.Time { return time.Now().UTC() },
		idFn:    uuid.NewString,
	}
}

// Export reads the dashboard and stores it as one JSON document.
func (e *Exporter) Export(ctx context.Context) (info blob.Info, err error) {
	defer e.service.observe(ctx, "export", time.Now(), &err)

	dash, err := e.service.Dashboard(ctx)
	if err != nil {
		return blob.Info{}, err
	}
	payload, err := json.Marshal(dash.Snapshot())
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode export: %w", err)
	}
	total := 0
	for _, n := range dash.Count() {
		total += n
	}
	now := e.now()
	key := ExportPrefix + now.Format("20060102T150405.000Z") + "-" + shortID(e.idFn()) + ".json"
	info, err = e.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"exported-at": now.Format(time.RFC3339),
			"records":     strconv.Itoa(total),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("write export %s: %w", key, err)
	}
	e.logger.InfoContext(ctx, "export written", "key", key, "records", total, "driver", string(e.blobs.Driver()))
	return info, nil
}

// List returns stored exports oldest first. URLs are attached when the
// driver can sign them.
func (e *Exporter) List(ctx context.Context) ([]blob.Info, error) {
	infos, err := e.exports(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]blob.Info, 0, len(infos))
	for _, info := range infos {
		url, err := e.blobs.PresignURL(ctx, info.Key, blob.SignedURLOptions{Method: "GET", Expiry: 15 * time.Minute})
		switch {
		case err == nil:
			info.URL = url
		case errors.Is(err, blob.ErrUnsupported):
		default:
			return nil, fmt.Errorf("sign export %s: %w", info.Key, err)
		}
		out = append(out, info)
	}
	return out, nil
}

// Open returns the raw document of the export called name (the key without
// the exports/ prefix).
func (e *Exporter) Open(ctx context.Context, name string) (blob.Info, io.ReadCloser, error) {
	key, err := exportKey(name)
	if err != nil {
		return blob.Info{}, nil, err
	}
	return e.blobs.Get(ctx, key)
}

// Load decodes the export called name.
func (e *Exporter) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	_, body, err := e.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	var snapshot domain.Snapshot
	if err := json.NewDecoder(body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode export %s: %w", name, err)
	}
	return snapshot, nil
}

// Prune deletes all but the newest keep exports and returns the removed keys.
func (e *Exporter) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative")
	}
	infos, err := e.exports(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) <= keep {
		return []string{}, nil
	}
	removed := make([]string, 0, len(infos)-keep)
	for _, info := range infos[:len(infos)-keep] {
		if _, err := e.blobs.Delete(ctx, info.Key); err != nil {
			return removed, fmt.Errorf("delete export %s: %w", info.Key, err)
		}
		removed = append(removed, info.Key)
	}
	if len(removed) > 0 {
		e.logger.InfoContext(ctx, "exports pruned", "removed", len(removed), "kept", keep)
	}
	return removed, nil
}

// exports lists the blobs addressable by Open, oldest first.
func (e *Exporter) exports(ctx context.Context) ([]blob.Info, error) {
	infos, err := e.blobs.List(ctx, ExportPrefix)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	out := infos[:0]
	for _, info := range infos {
		if _, err := exportKey(ExportName(info.Key)); err == nil {
			out = append(out, info)
		}
	}
	return out, nil
}

// ExportName strips the key prefix from an export key.
func ExportName(key string) string {
	return strings.TrimPrefix(key, ExportPrefix)
}

func exportKey(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") || !strings.HasSuffix(name, ".json") {
		return "", fmt.Errorf("%w: %q", ErrInvalidExportName, name)
	}
	return ExportPrefix + name, nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
