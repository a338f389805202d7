package dbhandler_test

import (
	"testing"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

func sampleTable() *dbhandler.Table {
	t := &dbhandler.Table{
		Columns: []dbhandler.Column{{Name: "id", Type: "int4"}, {Name: "name", Type: "text"}},
	}
	t.Append(1, "alpha")
	t.Append(2, nil)
	return t
}

func TestTable_Records(t *testing.T) {
	records := sampleTable().Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if id, _ := records[0].Get("id").Int(); id != 1 {
		t.Errorf("records[0].id = %d", id)
	}
	if records[0].Get("name").String() != "alpha" {
		t.Errorf("records[0].name = %q", records[0].Get("name").String())
	}
	if !records[1].Get("name").IsNull() {
		t.Error("records[1].name should be null")
	}
	if !records[1].Get("missing").IsNull() {
		t.Error("absent column should read as null")
	}
}

func TestTable_Lookup(t *testing.T) {
	tbl := sampleTable()

	if tbl.Len() != 2 {
		t.Errorf("Len() = %d", tbl.Len())
	}
	if tbl.ColumnIndex("name") != 1 || tbl.ColumnIndex("nope") != -1 {
		t.Error("ColumnIndex mismatch")
	}
	if got := tbl.ColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("ColumnNames() = %v", got)
	}
	if tbl.Get(0, "name").String() != "alpha" {
		t.Error("Get(0, name) mismatch")
	}
	if !tbl.Get(5, "name").IsNull() || !tbl.Get(0, "nope").IsNull() {
		t.Error("out of range lookups should be null")
	}
}

func TestTable_NilSafe(t *testing.T) {
	var tbl *dbhandler.Table
	if tbl.Len() != 0 || tbl.Records() != nil || tbl.ColumnIndex("x") != -1 || tbl.ColumnNames() != nil {
		t.Error("nil table accessors should be safe")
	}
}
