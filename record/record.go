// Package record stores scheduler runs in an SQLite database.
//
// A Recorder is attached to an executer as a hook. It buffers the station
// and functional unit rows of every cycle and writes them in batches. The
// final timing table and the run statistics are added with RecordRun.
//
// Tables:
//
//	runs      one row per recorded program
//	stations  non-free stations at the end of each cycle
//	units     claimed functional units at the end of each cycle
//	results   lifecycle cycles of every completed instruction
package record

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// RunEntry is a row of the runs table.
type RunEntry struct {
	RunID             string
	Program           string
	Instructions      uint64
	Cycles            uint64
	CPI               float64
	StructuralStalls  uint64
	OperandWaitCycles uint64
	Broadcasts        uint64
}

// StationEntry is a row of the stations table.
type StationEntry struct {
	RunID       string
	Cycle       uint64
	Station     string
	State       string
	Instruction string
	Vj          string
	Vk          string
	Qj          string
	Qk          string
	Addr        string
}

// UnitEntry is a row of the units table.
type UnitEntry struct {
	RunID string
	Cycle uint64
	Unit  string
	Owner string
	Value string
}

// ResultEntry is a row of the results table.
type ResultEntry struct {
	RunID       string
	Seq         int
	Instruction string
	Issue       uint64
	Start       uint64
	Exec        uint64
	Write       uint64
}

const (
	tableRuns     = "runs"
	tableStations = "stations"
	tableUnits    = "units"
	tableResults  = "results"
)

var tableEntries = []struct {
	name   string
	sample any
}{
	{tableRuns, RunEntry{}},
	{tableStations, StationEntry{}},
	{tableUnits, UnitEntry{}},
	{tableResults, ResultEntry{}},
}

// Recorder writes scheduler runs into a database.
type Recorder struct {
	db    *sql.DB
	runID string

	batchSize  int
	entryCount int
	buffered   map[string][]any

	err error
}

// New creates a database file at path plus the ".sqlite3" extension. An
// empty path generates a unique name. The file must not exist. Buffered rows
// are flushed when the program exits through atexit.
func New(path string) (*Recorder, error) {
	if path == "" {
		path = "tomasim_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, errors.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open recording database")
	}

	r, err := NewWithDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return r, nil
}

// NewWithDB creates a recorder that writes into an open database.
func NewWithDB(db *sql.DB) (*Recorder, error) {
	r := &Recorder{
		db:        db,
		runID:     xid.New().String(),
		batchSize: 10000,
		buffered:  make(map[string][]any),
	}

	if err := r.createTables(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// DB returns the underlying database.
func (r *Recorder) DB() *sql.DB {
	return r.db
}

// RunID returns the identifier of the current run.
func (r *Recorder) RunID() string {
	return r.runID
}

// NewRun starts a new run identifier for the rows recorded from now on.
func (r *Recorder) NewRun() string {
	r.runID = xid.New().String()
	return r.runID
}

func (r *Recorder) createTables() error {
	for _, t := range tableEntries {
		columns := strings.Join(structs.Names(t.sample), ", \n\t")
		query := "CREATE TABLE IF NOT EXISTS " + t.name +
			" (\n\t" + columns + "\n);"

		if _, err := r.db.Exec(query); err != nil {
			return errors.Wrapf(err, "failed to create table %s", t.name)
		}
	}

	return nil
}

// Func records the snapshot carried by a cycle-end hook context.
func (r *Recorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != tomasulo.HookPosCycleEnd {
		return
	}

	snap, ok := ctx.Item.(tomasulo.Snapshot)
	if !ok {
		return
	}

	r.RecordSnapshot(snap)
}

// RecordSnapshot buffers the non-free stations and claimed units of a
// snapshot.
func (r *Recorder) RecordSnapshot(snap tomasulo.Snapshot) {
	for _, s := range snap.Stations {
		if s.State == tomasulo.StateFree {
			continue
		}

		entry := StationEntry{
			RunID:   r.runID,
			Cycle:   snap.Cycle,
			Station: s.Tag.String(),
			State:   s.State.String(),
			Vj:      s.Vj.String(),
			Vk:      s.Vk.String(),
			Qj:      tagName(s.Qj),
			Qk:      tagName(s.Qk),
			Addr:    s.Addr.String(),
		}
		if s.Inst != nil {
			entry.Instruction = s.Inst.String()
		}

		r.insert(tableStations, entry)
	}

	for _, u := range snap.Units {
		if u.Owner == nil {
			continue
		}

		r.insert(tableUnits, UnitEntry{
			RunID: r.runID,
			Cycle: snap.Cycle,
			Unit:  u.Unit.String(),
			Owner: u.Owner.String(),
			Value: u.Value.String(),
		})
	}
}

// RecordRun buffers the timing table and the statistics of a completed
// program.
func (r *Recorder) RecordRun(
	program string,
	results []*insts.Instruction,
	stats tomasulo.Statistics,
) {
	r.insert(tableRuns, RunEntry{
		RunID:             r.runID,
		Program:           program,
		Instructions:      stats.Instructions,
		Cycles:            stats.Cycles,
		CPI:               stats.CPI(),
		StructuralStalls:  stats.StructuralStalls,
		OperandWaitCycles: stats.OperandWaitCycles,
		Broadcasts:        stats.Broadcasts,
	})

	for i, inst := range results {
		r.insert(tableResults, ResultEntry{
			RunID:       r.runID,
			Seq:         i,
			Instruction: inst.String(),
			Issue:       inst.EmitCycle,
			Start:       inst.StartCycle,
			Exec:        inst.ExecCycle,
			Write:       inst.WriteCycle,
		})
	}
}

func (r *Recorder) insert(table string, entry any) {
	r.buffered[table] = append(r.buffered[table], entry)
	r.entryCount++

	if r.entryCount >= r.batchSize {
		if err := r.Flush(); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Flush writes all buffered rows in one transaction. It also reports an
// earlier failure of an automatic flush.
func (r *Recorder) Flush() error {
	if r.err != nil {
		return r.err
	}

	if r.entryCount == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	for _, t := range tableEntries {
		entries := r.buffered[t.name]
		if len(entries) == 0 {
			continue
		}

		if err := insertAll(tx, t.name, entries); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit recording")
	}

	r.buffered = make(map[string][]any)
	r.entryCount = 0

	return nil
}

// Close flushes the buffered rows and closes the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	return r.db.Close()
}

func insertAll(tx *sql.Tx, table string, entries []any) error {
	placeholders := make([]string, len(structs.Names(entries[0])))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	query := "INSERT INTO " + table +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"

	stmt, err := tx.Prepare(query)
	if err != nil {
		return errors.Wrapf(err, "failed to prepare insert into %s", table)
	}
	defer func() { _ = stmt.Close() }()

	for _, entry := range entries {
		if _, err := stmt.Exec(fieldValues(entry)...); err != nil {
			return errors.Wrapf(err, "failed to insert into %s", table)
		}
	}

	return nil
}

func fieldValues(entry any) []any {
	v := reflect.ValueOf(entry)
	values := make([]any, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		values = append(values, v.Field(i).Interface())
	}

	return values
}

func tagName(t *tomasulo.Tag) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// String describes the recorder.
func (r *Recorder) String() string {
	return fmt.Sprintf("recorder(run %s, %d rows buffered)", r.runID, r.entryCount)
}
