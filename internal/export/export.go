// Package export writes CSV snapshots of the ledger so the stand keeps a
// plain-file copy of the day's sales outside the database.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kirinyoku/standpos/internal/domain"
)

const (
	SalesFile = "sales.csv"
	VipsFile  = "vips.csv"
)

var salesHeader = []string{
	"id",
	"created_at",
	"status",
	"payment_method",
	"vip_name",
	"total",
	"change_given",
	"flavor",
	"unit_price",
	"quantity",
}

var vipsHeader = []string{"name", "accumulated_total"}

// Exporter rewrites the snapshot files in dir. A nil *Exporter exports nothing.
type Exporter struct {
	dir string
}

// New returns nil when dir is empty.
func New(dir string) *Exporter {
	if dir == "" {
		return nil
	}
	return &Exporter{dir: dir}
}

func (e *Exporter) Dir() string {
	if e == nil {
		return ""
	}
	return e.dir
}

// Write replaces both snapshot files. Sales produce one row per line item;
// a sale with no lines left still gets one row with empty line columns.
func (e *Exporter) Write(sales []domain.Sale, vips []domain.VipAccount) error {
	const op = "export.Exporter.Write"

	if e == nil {
		return nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.writeFile(SalesFile, salesRows(sales)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.writeFile(VipsFile, vipRows(vips)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove deletes both snapshot files. Missing files are not an error.
func (e *Exporter) Remove() error {
	const op = "export.Exporter.Remove"

	if e == nil {
		return nil
	}

	for _, name := range []string{SalesFile, VipsFile} {
		err := os.Remove(filepath.Join(e.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// writeFile writes into a temp file in the same directory and renames it over
// the target, so readers never see a half-written snapshot.
func (e *Exporter) writeFile(name string, rows [][]string) error {
	tmp, err := os.CreateTemp(e.dir, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(e.dir, name))
}

func salesRows(sales []domain.Sale) [][]string {
	rows := make([][]string, 0, len(sales)+1)
	rows = append(rows, salesHeader)

	for _, s := range sales {
		head := []string{
			strconv.FormatInt(s.ID, 10),
			s.CreatedAt.UTC().Format(time.RFC3339),
			string(s.Status),
			string(s.PaymentMethod),
			s.VipName,
			s.Total.StringFixed(domain.MoneyPlaces),
			s.ChangeGiven.StringFixed(domain.MoneyPlaces),
		}

		if len(s.LineItems) == 0 {
			rows = append(rows, append(head, "", "", ""))
			continue
		}

		for _, l := range s.LineItems {
			row := append(append([]string{}, head...),
				l.FlavorName,
				l.UnitPrice.StringFixed(domain.MoneyPlaces),
				strconv.Itoa(l.Quantity),
			)
			rows = append(rows, row)
		}
	}

	return rows
}

func vipRows(vips []domain.VipAccount) [][]string {
	rows := make([][]string, 0, len(vips)+1)
	rows = append(rows, vipsHeader)

	for _, v := range vips {
		rows = append(rows, []string{
			v.Name,
			v.AccumulatedTotal.StringFixed(domain.MoneyPlaces),
		})
	}

	return rows
}
