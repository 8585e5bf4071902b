// Package options implements the option-chain pipeline (C6): fetch, expiry
// selection, CE/PE flattening, ATM strike banding, and atomic snapshot
// persistence. Grounded on fetch_and_save_option_chain and
// fetch_specific_expiry_option_chain (app/data_gather_stocks.py), including
// their exact bisect-based ATM search and CE_/PE_ column-expansion shape.
package options

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikasavnish/marketaggregator/internal/logging"
	"github.com/vikasavnish/marketaggregator/internal/metrics"
	"github.com/vikasavnish/marketaggregator/internal/models"
)

// ChainFetcher is the C1 capability this pipeline depends on (only the
// exchange adapter implements it).
type ChainFetcher interface {
	GetOptionChain(ctx context.Context, index string) (models.OptionChainRaw, error)
}

// Auditor is the C12 capability the pipeline records job/snapshot rows
// through. A nil Auditor degrades the pipeline to filesystem-only
// operation: fetchAndPersist skips every audit call when it is nil.
type Auditor interface {
	StartJob(jobType, indexName, expiry, paramsJSON string) string
	CompleteJob(id string)
	FailJob(id string, errMsg string)
	RecordSnapshot(snapshotID, indexName, expiry string, underlyingValue float64, atmStrike int64, csvPath, jsonPath string)
}

// Archiver is the C14 capability; a nil Archiver makes archival a no-op.
type Archiver interface {
	Upload(ctx context.Context, csvPath, jsonPath string) error
}

// Pipeline implements C6 end to end.
type Pipeline struct {
	fetcher   ChainFetcher
	outputDir string
	audit     Auditor
	archiver  Archiver
	log       *logging.Logger
	metrics   *metrics.Collectors

	indexLocks sync.Map // string index -> *sync.Mutex
}

func New(fetcher ChainFetcher, outputDir string, audit Auditor, archiver Archiver, log *logging.Logger, m *metrics.Collectors) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		outputDir: outputDir,
		audit:     audit,
		archiver:  archiver,
		log:       log,
		metrics:   m,
	}
}

func (p *Pipeline) lockFor(index string) func() {
	v, _ := p.indexLocks.LoadOrStore(index, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Expiries returns the upstream's list of available expiry dates for index.
func (p *Pipeline) Expiries(ctx context.Context, index string) ([]string, error) {
	raw, err := p.fetcher.GetOptionChain(ctx, index)
	if err != nil {
		return nil, err
	}
	return raw.Records.ExpiryDates, nil
}

// FetchNearest fetches, flattens, bands, and persists the snapshot for the
// nearest (first upstream-listed) expiry.
func (p *Pipeline) FetchNearest(ctx context.Context, index string, numStrikes int) (*models.OptionSnapshot, error) {
	return p.fetchAndPersist(ctx, index, "", numStrikes)
}

// FetchExpiry does the same for a caller-supplied expiry, which must appear
// in the upstream's expiry list.
func (p *Pipeline) FetchExpiry(ctx context.Context, index, expiry string, numStrikes int) (*models.OptionSnapshot, error) {
	return p.fetchAndPersist(ctx, index, expiry, numStrikes)
}

// LiveAnalytics performs the same fetch/select/flatten/band pipeline but
// never persists, satisfying the GET /options/live-* contract.
func (p *Pipeline) LiveAnalytics(ctx context.Context, index, expiry string, numStrikes int) (models.OptionChainFlat, float64, error) {
	raw, err := p.fetcher.GetOptionChain(ctx, index)
	if err != nil {
		return nil, 0, err
	}
	resolvedExpiry, err := resolveExpiry(raw, expiry)
	if err != nil {
		return nil, 0, err
	}
	flat, err := flatten(raw, resolvedExpiry)
	if err != nil {
		return nil, 0, err
	}
	banded, _, err := band(flat, raw.Records.UnderlyingValue, numStrikes)
	if err != nil {
		return nil, 0, err
	}
	return banded, raw.Records.UnderlyingValue, nil
}

func (p *Pipeline) fetchAndPersist(ctx context.Context, index, requestedExpiry string, numStrikes int) (*models.OptionSnapshot, error) {
	start := time.Now()
	index = strings.ToUpper(strings.TrimSpace(index))

	paramsJSON, _ := json.Marshal(map[string]interface{}{"index": index, "expiry": requestedExpiry, "num_strikes": numStrikes})
	var jobID string
	if p.audit != nil {
		jobID = p.audit.StartJob("option_chain_fetch", index, requestedExpiry, string(paramsJSON))
	}
	fail := func(err error) (*models.OptionSnapshot, error) {
		if p.audit != nil {
			p.audit.FailJob(jobID, err.Error())
		}
		return nil, err
	}

	raw, err := p.fetcher.GetOptionChain(ctx, index)
	if err != nil {
		return fail(err)
	}

	expiry, err := resolveExpiry(raw, requestedExpiry)
	if err != nil {
		return fail(err)
	}

	flat, err := flatten(raw, expiry)
	if err != nil {
		return fail(err)
	}

	banded, meta, err := band(flat, raw.Records.UnderlyingValue, numStrikes)
	if err != nil {
		return fail(err)
	}

	meta.IndexName = index
	meta.Expiry = expiry
	meta.CreatedAtUTC = time.Now().UTC().Format(time.RFC3339)

	unlock := p.lockFor(index)
	csvPath, jsonPath, err := p.persist(index, expiry, banded, meta)
	unlock()
	if err != nil {
		return fail(err)
	}

	if p.audit != nil {
		p.audit.CompleteJob(jobID)
		p.audit.RecordSnapshot(filepath.Base(csvPath), index, expiry, meta.UnderlyingValue, meta.ATMStrike, csvPath, jsonPath)
	}
	if p.archiver != nil {
		if archErr := p.archiver.Upload(ctx, csvPath, jsonPath); archErr != nil {
			p.log.WithError(archErr).WithField("index", index).Warn("snapshot archival failed, local write already succeeded")
		}
	}
	p.metrics.ObserveOptionFetch(index, time.Since(start).Seconds())

	return &models.OptionSnapshot{Meta: meta, Rows: banded}, nil
}

// LatestSnapshot re-reads the most recently persisted CSV for index,
// selected by descending lexicographic filename order, which spec.md §6
// notes equals chronological order by construction (the timestamp suffix
// sorts the same either way). Used by GET /options/analytics, which reads
// only from the filesystem — the audit database is never consulted to serve
// a read (SPEC_FULL.md §4.12).
func (p *Pipeline) LatestSnapshot(index string) (models.OptionChainFlat, error) {
	index = strings.ToUpper(strings.TrimSpace(index))
	prefix := strings.ToLower(index) + "_option_chain_"

	entries, err := os.ReadDir(p.outputDir)
	if err != nil {
		return nil, models.NewNotFound("no snapshots directory for %s", index)
	}

	var latest string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return nil, models.NewNotFound("no persisted snapshot found for %s", index)
	}

	return readSnapshotCSV(filepath.Join(p.outputDir, latest))
}

func readSnapshotCSV(path string) (models.OptionChainFlat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewSchemaError("snapshot file %s could not be opened: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, models.NewSchemaError("snapshot file %s is not valid CSV: %v", path, err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	out := make(models.OptionChainFlat, 0, len(records)-1)
	for _, record := range records[1:] {
		row := models.FlatRow{CE: map[string]interface{}{}, PE: map[string]interface{}{}}
		for i, col := range header {
			if i >= len(record) || record[i] == "" {
				continue
			}
			switch {
			case col == "strikePrice":
				row.StrikePrice, _ = decimal.NewFromString(record[i])
			case col == "expiryDate":
				row.ExpiryDate = record[i]
			case strings.HasPrefix(col, "CE_"):
				row.CE[strings.TrimPrefix(col, "CE_")] = record[i]
			case strings.HasPrefix(col, "PE_"):
				row.PE[strings.TrimPrefix(col, "PE_")] = record[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// resolveExpiry implements spec.md §4.6 step 2: nearest when requested is
// empty, else must be present in upstream's list.
func resolveExpiry(raw models.OptionChainRaw, requested string) (string, error) {
	if len(raw.Records.Data) == 0 || len(raw.Records.ExpiryDates) == 0 {
		return "", models.NewSchemaError("option chain response missing records.data or records.expiryDates")
	}
	if requested == "" {
		return raw.Records.ExpiryDates[0], nil
	}
	normalized := NormalizeExpiry(requested)
	for _, e := range raw.Records.ExpiryDates {
		if e == normalized {
			return e, nil
		}
	}
	return "", models.NewNotFound("expiry %s not found in upstream expiry list", requested)
}

// flatten implements spec.md §4.6 step 3: filter by expiry, hoist CE/PE,
// drop rows with neither side present.
func flatten(raw models.OptionChainRaw, expiry string) (models.OptionChainFlat, error) {
	out := make(models.OptionChainFlat, 0, len(raw.Records.Data))
	for _, row := range raw.Records.Data {
		if row.ExpiryDate != expiry {
			continue
		}
		if row.CE == nil && row.PE == nil {
			continue
		}
		strike, err := strikeToDecimal(row.StrikePrice)
		if err != nil {
			continue // invalid strikePrice rows are dropped, per spec.md §4.6 step 4
		}
		out = append(out, models.FlatRow{
			StrikePrice: strike,
			ExpiryDate:  row.ExpiryDate,
			CE:          row.CE,
			PE:          row.PE,
		})
	}
	return out, nil
}

func strikeToDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported strikePrice type %T", raw)
	}
}

// band implements spec.md §4.6 step 4: sort unique strikes ascending, binary
// search the ATM index against underlyingValue, stepping to the lower
// neighbour only when it is strictly closer (an equidistant pair keeps the
// higher strike), then take the contiguous window of numStrikes on either
// side.
func band(flat models.OptionChainFlat, underlyingValue float64, numStrikes int) (models.OptionChainFlat, models.SnapshotMeta, error) {
	if len(flat) == 0 {
		return nil, models.SnapshotMeta{}, models.NewSchemaError("no rows to band: chain is empty for the resolved expiry")
	}

	uniqueStrikes := map[string]float64{}
	for _, row := range flat {
		f, _ := row.StrikePrice.Float64()
		uniqueStrikes[row.StrikePrice.String()] = f
	}
	strikes := make([]float64, 0, len(uniqueStrikes))
	for _, f := range uniqueStrikes {
		strikes = append(strikes, f)
	}
	sort.Float64s(strikes)

	atmIndex := sort.SearchFloat64s(strikes, underlyingValue)
	switch {
	case atmIndex >= len(strikes):
		atmIndex = len(strikes) - 1
	case atmIndex > 0 && math.Abs(strikes[atmIndex-1]-underlyingValue) < math.Abs(strikes[atmIndex]-underlyingValue):
		atmIndex--
	}

	lowIndex := atmIndex - numStrikes
	if lowIndex < 0 {
		lowIndex = 0
	}
	highIndex := atmIndex + numStrikes
	if highIndex > len(strikes)-1 {
		highIndex = len(strikes) - 1
	}
	selected := strikes[lowIndex : highIndex+1]

	selectedSet := make(map[float64]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	out := make(models.OptionChainFlat, 0, len(selected))
	for _, row := range flat {
		f, _ := row.StrikePrice.Float64()
		if selectedSet[f] {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StrikePrice.LessThan(out[j].StrikePrice) })

	meta := models.SnapshotMeta{
		UnderlyingValue:      underlyingValue,
		ATMStrike:            int64(strikes[atmIndex]),
		SelectedStrikesRange: [2]int64{int64(selected[0]), int64(selected[len(selected)-1])},
		TotalStrikes:         len(out),
	}
	return out, meta, nil
}

// persist implements spec.md §4.6 step 5: write CSV then metadata JSON, each
// via write-to-temp-then-rename in the target directory.
func (p *Pipeline) persist(index, expiry string, rows models.OptionChainFlat, meta models.SnapshotMeta) (csvPath, jsonPath string, err error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", "", err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	safeExpiry := strings.NewReplacer(" ", "_", "/", "-").Replace(expiry)
	base := fmt.Sprintf("%s_option_chain_%s_%s", strings.ToLower(index), safeExpiry, timestamp)
	csvPath = filepath.Join(p.outputDir, base+".csv")
	jsonPath = filepath.Join(p.outputDir, base+".json")

	if err := writeCSVAtomically(csvPath, rows); err != nil {
		return "", "", err
	}
	if err := writeJSONAtomically(jsonPath, meta); err != nil {
		return "", "", err
	}
	return csvPath, jsonPath, nil
}

func writeCSVAtomically(path string, rows models.OptionChainFlat) error {
	ceKeys, peKeys := unionKeys(rows)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.csv.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	header := append([]string{"strikePrice", "expiryDate"}, prefixed("CE_", ceKeys)...)
	header = append(header, prefixed("PE_", peKeys)...)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	for _, row := range rows {
		record := []string{row.StrikePrice.String(), row.ExpiryDate}
		for _, k := range ceKeys {
			record = append(record, valueOrEmpty(row.CE, k))
		}
		for _, k := range peKeys {
			record = append(record, valueOrEmpty(row.PE, k))
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func writeJSONAtomically(path string, meta models.SnapshotMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func unionKeys(rows models.OptionChainFlat) (ce, pe []string) {
	ceSet, peSet := map[string]bool{}, map[string]bool{}
	for _, row := range rows {
		for k := range row.CE {
			ceSet[k] = true
		}
		for k := range row.PE {
			peSet[k] = true
		}
	}
	ce = keysSorted(ceSet)
	pe = keysSorted(peSet)
	return ce, pe
}

func keysSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func prefixed(prefix string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = prefix + k
	}
	return out
}

func valueOrEmpty(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// NewSnapshotID generates a collision-resistant identifier for background
// job tracking, mirroring the original's job_id = str(uuid.uuid4()) pattern
// (app/routes/options.py).
func NewSnapshotID() string { return uuid.NewString() }

// NormalizeExpiry accepts either the upstream's own "DD-MMM-YYYY" text form
// or a caller's shorthand numeric "DDMMYY" form (spec.md §6) and returns the
// text form so it can be matched directly against
// raw.Records.ExpiryDates. Anything that isn't six digits is trimmed and
// passed through unchanged.
func NormalizeExpiry(expiry string) string {
	trimmed := strings.TrimSpace(expiry)
	if len(trimmed) != 6 {
		return trimmed
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return trimmed
		}
	}
	t, err := time.Parse("020106", trimmed)
	if err != nil {
		return trimmed
	}
	return t.Format("02-Jan-2006")
}
