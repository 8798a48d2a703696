// Package cache memoizes a compiled wasm.Module (lucidc build passes
// lowering + codegen as the build step; inference runs before the
// cache is consulted) by a hash of its source text and TypeMap, so a
// build tool driving the same input twice pays for that step once.
//
// Grounded on the teacher's internal/vm.Bundle gob-registration idiom
// (bundle.go's init() registers every concrete type reachable through
// Bundle's interface fields before (de)serializing it) — this
// package's init does the same for every internal/wasm.Instruction variant, since a
// wasm.Module holds its instruction stream behind that interface.
// Persistence is backed by modernc.org/sqlite (the teacher's own pure-
// Go driver), and concurrent identical compiles are collapsed with
// golang.org/x/sync/singleflight, promoted here from the teacher's
// indirect dependency to a direct one.
package cache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/types"
	"github.com/lucidlang/lucid/internal/wasm"
)

func init() {
	gob.Register(wasm.I32Const{})
	gob.Register(wasm.LocalGet{})
	gob.Register(wasm.LocalSet{})
	gob.Register(wasm.LocalTee{})
	gob.Register(wasm.GlobalGet{})
	gob.Register(wasm.GlobalSet{})
	gob.Register(wasm.Call{})
	gob.Register(wasm.CallIndirect{})
	gob.Register(wasm.If{})
	gob.Register(wasm.Unreachable{})
	gob.Register(wasm.Block{})
	gob.Register(wasm.Loop{})
	gob.Register(wasm.Br{})
	gob.Register(wasm.BrIf{})
	gob.Register(wasm.Drop{})
	gob.Register(wasm.Return{})
	gob.Register(wasm.MemLoad{})
	gob.Register(wasm.MemStore{})
	gob.Register(wasm.BinOp{})
}

// Cache memoizes compiled wasm.Modules in a SQLite database.
type Cache struct {
	db     *sql.DB
	flight singleflight.Group
}

// Open opens (creating if necessary) a cache database at path. Use
// ":memory:" for a process-local, non-persistent cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS artifacts (
		key TEXT PRIMARY KEY,
		module BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes a source text together with a preseeded TypeMap into a
// stable cache key. The TypeMap is rendered through a sorted,
// deterministic textual form first — Go map iteration order is not
// stable, and the hash must be.
func Key(source string, seed types.TypeMap) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(canonicalTypeMap(seed)))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalTypeMap(tm types.TypeMap) string {
	sortedNames := make([]string, 0, len(tm))
	for n := range tm {
		sortedNames = append(sortedNames, string(n))
	}
	sort.Strings(sortedNames)

	var buf bytes.Buffer
	for _, n := range sortedNames {
		info := tm[names.Name(n)]
		fmt.Fprintf(&buf, "%s(", n)
		for _, a := range info.TyArgs {
			fmt.Fprintf(&buf, "%s,", a)
		}
		buf.WriteString(")=")
		for _, ctor := range info.Constructors {
			fmt.Fprintf(&buf, "%s/%d;", ctor.Name, len(ctor.ArgTypes))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// Get returns the cached module for key, if present.
func (c *Cache) Get(key string) (*wasm.Module, bool, error) {
	var blob []byte
	err := c.db.QueryRow(`SELECT module FROM artifacts WHERE key = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	var m wasm.Module
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&m); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return &m, true, nil
}

// Put stores m under key, overwriting any prior entry.
func (c *Cache) Put(key string, m *wasm.Module) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	_, err := c.db.Exec(
		`INSERT INTO artifacts (key, module) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET module = excluded.module`,
		key, buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	return nil
}

// Compile memoizes build: concurrent callers with the same key
// collapse into a single build invocation (singleflight), and a
// successful result is persisted before being returned so a later,
// unrelated process reuses it without recompiling.
func (c *Cache) Compile(key string, build func() (*wasm.Module, error)) (*wasm.Module, error) {
	if m, ok, err := c.Get(key); err != nil {
		return nil, err
	} else if ok {
		return m, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		m, err := build()
		if err != nil {
			return nil, err
		}
		if err := c.Put(key, m); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*wasm.Module), nil
}
