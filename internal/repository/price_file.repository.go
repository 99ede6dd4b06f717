package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"stocktrader/internal/domain"
	"stocktrader/internal/util"

	"github.com/gocarina/gocsv"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentLoads = 8

// one line of a per-stock price file. OpenInt is always 0 in the
// dataset and is ignored
type priceFileRow struct {
	Date    string  `csv:"Date"`
	Open    float64 `csv:"Open"`
	High    float64 `csv:"High"`
	Low     float64 `csv:"Low"`
	Close   float64 `csv:"Close"`
	Volume  float64 `csv:"Volume"`
	OpenInt int64   `csv:"OpenInt"`
}

type PriceCache map[string]*domain.InstrumentSeries

type PriceRepository interface {
	ListInstruments() ([]string, error)
	Get(instrumentID string) (*domain.InstrumentSeries, error)
	ListAll() ([]domain.InstrumentSeries, error)
}

// NewPriceFileRepository reads price history from a directory holding one
// "<symbol>.<market>.txt" CSV file per stock
func NewPriceFileRepository(dataDir string) PriceRepository {
	return &PriceFileRepositoryHandler{
		DataDir:   dataDir,
		Cache:     make(PriceCache),
		ReadMutex: &sync.RWMutex{},
	}
}

type PriceFileRepositoryHandler struct {
	DataDir   string
	Cache     PriceCache
	ReadMutex *sync.RWMutex
}

// InstrumentIDFromPath turns "data/aapl.us.txt" into "AAPL"
func InstrumentIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.Split(base, ".")[0])
}

func (h PriceFileRepositoryHandler) files() (map[string]string, error) {
	paths, err := filepath.Glob(filepath.Join(h.DataDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list price files in %s: %w", h.DataDir, err)
	}

	out := map[string]string{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.Size() == 0 {
			continue
		}
		out[InstrumentIDFromPath(p)] = p
	}
	return out, nil
}

func (h PriceFileRepositoryHandler) ListInstruments() ([]string, error) {
	files, err := h.files()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (h PriceFileRepositoryHandler) getFromCache(instrumentID string) *domain.InstrumentSeries {
	h.ReadMutex.RLock()
	defer h.ReadMutex.RUnlock()
	return h.Cache[instrumentID]
}

func (h PriceFileRepositoryHandler) addToCache(series *domain.InstrumentSeries) {
	h.ReadMutex.Lock()
	h.Cache[series.InstrumentID] = series
	h.ReadMutex.Unlock()
}

func (h PriceFileRepositoryHandler) Get(instrumentID string) (*domain.InstrumentSeries, error) {
	if s := h.getFromCache(instrumentID); s != nil {
		return s, nil
	}

	files, err := h.files()
	if err != nil {
		return nil, err
	}
	path, ok := files[instrumentID]
	if !ok {
		return nil, fmt.Errorf("no price file for %s in %s", instrumentID, h.DataDir)
	}

	return h.load(instrumentID, path)
}

func (h PriceFileRepositoryHandler) load(instrumentID, path string) (*domain.InstrumentSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows := []priceFileRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil && !errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	bars := make([]domain.PriceBar, 0, len(rows))
	for _, row := range rows {
		date, err := util.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q in %s", domain.ErrInvalidInput, row.Date, path)
		}
		bars = append(bars, domain.PriceBar{
			Date:         date,
			Open:         row.Open,
			High:         row.High,
			Low:          row.Low,
			Close:        row.Close,
			Volume:       row.Volume,
			InstrumentID: instrumentID,
		})
	}

	series, err := domain.NewInstrumentSeries(instrumentID, bars)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	h.addToCache(series)

	return series, nil
}

// ListAll loads every non-empty price file, ordered by instrument id.
// uncached files are parsed concurrently
func (h PriceFileRepositoryHandler) ListAll() ([]domain.InstrumentSeries, error) {
	files, err := h.files()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	loaded := make([]*domain.InstrumentSeries, len(ids))
	eg := errgroup.Group{}
	eg.SetLimit(maxConcurrentLoads)
	for i, id := range ids {
		i, id := i, id
		if s := h.getFromCache(id); s != nil {
			loaded[i] = s
			continue
		}
		eg.Go(func() error {
			s, err := h.load(id, files[id])
			if err != nil {
				return err
			}
			loaded[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.InstrumentSeries, 0, len(loaded))
	for _, s := range loaded {
		if len(s.Bars) == 0 {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}
