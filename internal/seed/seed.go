package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/config"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const DefaultImage = "images/default.jpg"

// Price accepts 59.99, "59.99" or "$1,059.99".
type Price struct {
	decimal.Decimal
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("price %q: %w", s, err)
		}
		p.Decimal = d
		return nil
	}
	return p.Decimal.UnmarshalJSON(b)
}

// Platforms accepts a list or a comma separated string.
type Platforms []string

func (p *Platforms) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = config.CSV(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*p = out
	return nil
}

type Entry struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Platform    Platforms `json:"platform"`
	Price       *Price    `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Image       string    `json:"image"`
}

func (e Entry) valid() error {
	switch {
	case e.ID == 0:
		return errors.New("missing id")
	case strings.TrimSpace(e.Name) == "":
		return errors.New("missing name")
	case len(e.Platform) == 0:
		return errors.New("missing platform")
	case e.Price == nil:
		return errors.New("missing price")
	case e.Price.IsNegative():
		return errors.New("negative price")
	}
	return nil
}

// Parse decodes the seed list. Entries are decoded one by one so a bad entry
// is skipped instead of failing the whole file.
func Parse(l *slog.Logger, data []byte, imagesDir string) ([]models.Product, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	out := make([]models.Product, 0, len(raw))
	seen := map[uint]bool{}
	for i, msg := range raw {
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			l.Warn("seed_entry_skipped", "index", i, "error", err)
			continue
		}
		if err := e.valid(); err != nil {
			l.Warn("seed_entry_skipped", "index", i, "id", e.ID, "error", err)
			continue
		}
		if seen[e.ID] {
			l.Warn("seed_entry_skipped", "index", i, "id", e.ID, "error", "duplicate id")
			continue
		}
		seen[e.ID] = true

		stock := e.Stock
		if stock < 0 {
			stock = 0
		}
		out = append(out, models.Product{
			ID:          e.ID,
			Name:        strings.TrimSpace(e.Name),
			Platforms:   []string(e.Platform),
			Price:       e.Price.Round(2).InexactFloat64(),
			Stock:       stock,
			Description: e.Description,
			ImageRef:    imageRef(l, e, imagesDir),
		})
	}
	return out, nil
}

// imageRef keeps the path when the file exists under imagesDir and falls
// back to the default picture otherwise.
func imageRef(l *slog.Logger, e Entry, imagesDir string) string {
	ref := e.ImageURL
	if ref == "" {
		ref = e.Image
	}
	if ref == "" {
		return DefaultImage
	}
	if imagesDir != "" {
		if _, err := os.Stat(filepath.Join(imagesDir, filepath.Base(ref))); err != nil {
			l.Warn("seed_image_missing", "id", e.ID, "image", ref)
			return DefaultImage
		}
	}
	return ref
}

// Load reads the seed file and inserts it when the catalog is empty. A
// missing file is not an error.
func Load(ctx context.Context, r *repo.GormRepo, path, imagesDir string) (int, error) {
	l := logging.FromContext(ctx).With("component", "seed", "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Info("seed_file_missing")
			return 0, nil
		}
		return 0, fmt.Errorf("seed: %w", err)
	}

	products, err := Parse(l, data, imagesDir)
	if err != nil {
		return 0, err
	}
	n, err := r.CreateProductsIfEmpty(ctx, products)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.Info("seed_loaded", "products", n)
	}
	return n, nil
}
