package mem

import (
	"io"
	"io/ioutil"

	"github.com/src-d/go-sql-planner/sql"
	"gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"
)

// ErrInvalidCatalog is returned when a catalog description cannot be loaded.
var ErrInvalidCatalog = errors.NewKind("invalid catalog: %s")

type catalogSpec struct {
	Databases []databaseSpec `yaml:"databases"`
}

type databaseSpec struct {
	Name   string      `yaml:"name"`
	Tables []tableSpec `yaml:"tables"`
}

type tableSpec struct {
	Name    string       `yaml:"name"`
	Columns []columnSpec `yaml:"columns"`
}

type columnSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// Load reads the YAML description of a set of databases:
//
//	databases:
//	  - name: mydb
//	    tables:
//	      - name: emp
//	        columns:
//	          - {name: id, type: INT64}
//	          - {name: dept, type: TEXT, nullable: true}
func Load(r io.Reader) ([]*Database, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var spec catalogSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, ErrInvalidCatalog.Wrap(err, "malformed yaml")
	}

	var dbs []*Database
	for _, ds := range spec.Databases {
		if ds.Name == "" {
			return nil, ErrInvalidCatalog.New("database without name")
		}

		db := NewDatabase(ds.Name)
		for _, ts := range ds.Tables {
			if ts.Name == "" {
				return nil, ErrInvalidCatalog.New("table without name in database " + ds.Name)
			}

			if _, ok := db.Tables()[ts.Name]; ok {
				return nil, ErrInvalidCatalog.New("duplicate table " + ds.Name + "." + ts.Name)
			}

			var schema sql.Schema
			for _, cs := range ts.Columns {
				if schema.Contains(cs.Name, ts.Name) {
					return nil, ErrInvalidCatalog.New("duplicate column " + ts.Name + "." + cs.Name)
				}
				schema = append(schema, &sql.Column{
					Name:     cs.Name,
					Type:     cs.Type,
					Nullable: cs.Nullable,
					Source:   ts.Name,
				})
			}
			db.AddTable(ts.Name, NewTable(ts.Name, schema))
		}
		dbs = append(dbs, db)
	}

	return dbs, nil
}
