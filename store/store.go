// Package store persists compiled graphs in SQLite so a compile unit
// can restore its baseline across sessions and diff against it instead
// of rebuilding the node tree.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gonodes/exprgraph/ir"
)

// ErrNotFound is returned when a unit has no persisted baseline.
var ErrNotFound = errors.New("store: baseline not found")

// Store handles SQLite persistence of compiled graphs.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		unit_id TEXT NOT NULL,
		identity TEXT NOT NULL,
		position INTEGER NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (unit_id, identity),
		FOREIGN KEY (unit_id) REFERENCES units(id)
	);

	CREATE TABLE IF NOT EXISTS edges (
		unit_id TEXT NOT NULL,
		from_identity TEXT NOT NULL,
		to_identity TEXT NOT NULL,
		to_slot INTEGER NOT NULL,
		FOREIGN KEY (unit_id) REFERENCES units(id)
	);

	CREATE TABLE IF NOT EXISTS ports (
		unit_id TEXT NOT NULL,
		direction TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		type INTEGER NOT NULL,
		node_identity TEXT NOT NULL,
		FOREIGN KEY (unit_id) REFERENCES units(id)
	);

	CREATE TABLE IF NOT EXISTS handles (
		unit_id TEXT NOT NULL,
		identity TEXT NOT NULL,
		handle TEXT NOT NULL,
		PRIMARY KEY (unit_id, identity),
		FOREIGN KEY (unit_id) REFERENCES units(id)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_unit ON nodes(unit_id, position);
	CREATE INDEX IF NOT EXISTS idx_edges_unit ON edges(unit_id);
	CREATE INDEX IF NOT EXISTS idx_ports_unit ON ports(unit_id, direction, position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// nodeBody is the JSON shape of one persisted node. The identity lives
// in its own column; everything else rides along as a document.
type nodeBody struct {
	Kind      string                `json:"kind"`
	Operation string                `json:"operation,omitempty"`
	Output    ir.DataType           `json:"output"`
	Inputs    []ir.InputSlot        `json:"inputs,omitempty"`
	Params    []ir.Param            `json:"params,omitempty"`
	Const     *ir.ConstValue        `json:"const,omitempty"`
	Defaults  map[int]ir.ConstValue `json:"defaults,omitempty"`
}

// SaveBaseline replaces the persisted graph for a unit.
func (s *Store) SaveBaseline(unitID string, g *ir.Graph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "ports"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE unit_id = ?", unitID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO units (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		unitID, time.Now().UTC(),
	); err != nil {
		return err
	}

	for pos, id := range g.Order {
		n := g.Nodes[id]
		body, err := json.Marshal(nodeBody{
			Kind:      n.Kind,
			Operation: n.Operation,
			Output:    n.Output,
			Inputs:    n.Inputs,
			Params:    n.Params,
			Const:     n.Const,
			Defaults:  n.Defaults,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO nodes (unit_id, identity, position, body) VALUES (?, ?, ?, ?)`,
			unitID, id.String(), pos, string(body),
		); err != nil {
			return err
		}
	}

	for _, e := range g.SortedEdges() {
		if _, err := tx.Exec(
			`INSERT INTO edges (unit_id, from_identity, to_identity, to_slot) VALUES (?, ?, ?, ?)`,
			unitID, e.From.String(), e.To.String(), e.ToSlot,
		); err != nil {
			return err
		}
	}

	savePorts := func(direction string, ports []ir.PortDecl) error {
		for pos, p := range ports {
			if _, err := tx.Exec(
				`INSERT INTO ports (unit_id, direction, position, name, type, node_identity)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				unitID, direction, pos, p.Name, int(p.Type), p.Node.String(),
			); err != nil {
				return err
			}
		}
		return nil
	}
	if err := savePorts("in", g.Inputs); err != nil {
		return err
	}
	if err := savePorts("out", g.Outputs); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadBaseline restores a unit's persisted graph.
func (s *Store) LoadBaseline(unitID string) (*ir.Graph, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM units WHERE id = ?", unitID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	g := ir.NewGraph()

	rows, err := s.db.Query(
		"SELECT identity, body FROM nodes WHERE unit_id = ? ORDER BY position", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var idStr, body string
		if err := rows.Scan(&idStr, &body); err != nil {
			return nil, err
		}
		id, err := ir.ParseIdentity(idStr)
		if err != nil {
			return nil, err
		}
		var nb nodeBody
		if err := json.Unmarshal([]byte(body), &nb); err != nil {
			return nil, fmt.Errorf("node %s: %w", idStr, err)
		}
		g.AddNode(&ir.OpNode{
			ID:        id,
			Kind:      nb.Kind,
			Operation: nb.Operation,
			Output:    nb.Output,
			Inputs:    nb.Inputs,
			Params:    nb.Params,
			Const:     nb.Const,
			Defaults:  nb.Defaults,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.Query(
		"SELECT from_identity, to_identity, to_slot FROM edges WHERE unit_id = ?", unitID)
	if err != nil {
		return nil, err
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var fromStr, toStr string
		var slot int
		if err := edgeRows.Scan(&fromStr, &toStr, &slot); err != nil {
			return nil, err
		}
		from, err := ir.ParseIdentity(fromStr)
		if err != nil {
			return nil, err
		}
		to, err := ir.ParseIdentity(toStr)
		if err != nil {
			return nil, err
		}
		g.AddEdge(ir.OpEdge{From: from, To: to, ToSlot: slot})
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	portRows, err := s.db.Query(
		`SELECT direction, name, type, node_identity FROM ports
		 WHERE unit_id = ? ORDER BY direction, position`, unitID)
	if err != nil {
		return nil, err
	}
	defer portRows.Close()
	for portRows.Next() {
		var direction, name, nodeStr string
		var typ int
		if err := portRows.Scan(&direction, &name, &typ, &nodeStr); err != nil {
			return nil, err
		}
		node, err := ir.ParseIdentity(nodeStr)
		if err != nil {
			return nil, err
		}
		decl := ir.PortDecl{Name: name, Type: ir.DataType(typ), Node: node}
		if direction == "in" {
			g.Inputs = append(g.Inputs, decl)
		} else {
			g.Outputs = append(g.Outputs, decl)
		}
	}
	if err := portRows.Err(); err != nil {
		return nil, err
	}

	return g, nil
}

// SaveHandles records the host editor's node names for a unit, keyed
// by identity, so a materializer can find its nodes again.
func (s *Store) SaveHandles(unitID string, handles map[ir.Identity]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM handles WHERE unit_id = ?", unitID); err != nil {
		return err
	}
	for id, handle := range handles {
		if _, err := tx.Exec(
			`INSERT INTO handles (unit_id, identity, handle) VALUES (?, ?, ?)`,
			unitID, id.String(), handle,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadHandles restores the identity to host-name mapping for a unit.
func (s *Store) LoadHandles(unitID string) (map[ir.Identity]string, error) {
	rows, err := s.db.Query("SELECT identity, handle FROM handles WHERE unit_id = ?", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	handles := make(map[ir.Identity]string)
	for rows.Next() {
		var idStr, handle string
		if err := rows.Scan(&idStr, &handle); err != nil {
			return nil, err
		}
		id, err := ir.ParseIdentity(idStr)
		if err != nil {
			return nil, err
		}
		handles[id] = handle
	}
	return handles, rows.Err()
}

// DeleteUnit removes everything persisted for a unit.
func (s *Store) DeleteUnit(unitID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "ports", "handles", "units"} {
		col := "unit_id"
		if table == "units" {
			col = "id"
		}
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE "+col+" = ?", unitID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
