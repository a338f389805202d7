package dbhandler_test

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

type stringerID string

func (s stringerID) String() string { return "id-" + string(s) }

func TestNewValue_Kinds(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		kind dbhandler.Kind
		str  string
	}{
		{"nil", nil, dbhandler.KindNull, ""},
		{"string", "abc", dbhandler.KindString, "abc"},
		{"int32", int32(-4), dbhandler.KindInt, "-4"},
		{"uint16", uint16(9), dbhandler.KindInt, "9"},
		{"uint64 in range", uint64(math.MaxInt64), dbhandler.KindInt, "9223372036854775807"},
		{"uint64 above int64", uint64(math.MaxUint64), dbhandler.KindDecimal, "18446744073709551615"},
		{"uint64 high bit", uint64(1 << 63), dbhandler.KindDecimal, "9223372036854775808"},
		{"int64", int64(1 << 40), dbhandler.KindInt, "1099511627776"},
		{"float32", float32(1.5), dbhandler.KindFloat, "1.5"},
		{"float64", 2.25, dbhandler.KindFloat, "2.25"},
		{"big float", big.NewFloat(0.5), dbhandler.KindFloat, "0.5"},
		{"bool", true, dbhandler.KindBool, "true"},
		{"time", ts, dbhandler.KindTime, "2024-01-02T03:04:05Z"},
		{"bytes", []byte{0xde, 0xad}, dbhandler.KindBytes, `\xdead`},
		{"nil bytes", []byte(nil), dbhandler.KindNull, ""},
		{"nil string pointer", (*string)(nil), dbhandler.KindNull, ""},
		{"stringer", stringerID("7"), dbhandler.KindString, "id-7"},
		{"fallback", struct{ A int }{3}, dbhandler.KindString, "{3}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := dbhandler.NewValue(tt.in)
			if v.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.kind)
			}
			if v.String() != tt.str {
				t.Errorf("String() = %q, want %q", v.String(), tt.str)
			}
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	if i, ok := dbhandler.IntValue(5).Int(); !ok || i != 5 {
		t.Errorf("Int() = %d, %v", i, ok)
	}
	if f, ok := dbhandler.IntValue(5).Float(); !ok || f != 5 {
		t.Errorf("Float() of int = %v, %v", f, ok)
	}
	if _, ok := dbhandler.StringValue("5").Int(); ok {
		t.Error("string should not convert to int")
	}
	if !dbhandler.Null.IsNull() {
		t.Error("Null should be null")
	}
	if dbhandler.NewValue(dbhandler.IntValue(3)).Kind() != dbhandler.KindInt {
		t.Error("NewValue should pass a Value through")
	}
}

func TestValue_Equal(t *testing.T) {
	a := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("X", 3600))

	if !dbhandler.TimeValue(a).Equal(dbhandler.TimeValue(b)) {
		t.Error("same instant in different zones should be equal")
	}
	if dbhandler.IntValue(1).Equal(dbhandler.FloatValue(1)) {
		t.Error("different kinds should not be equal")
	}
	if !dbhandler.Null.Equal(dbhandler.NewValue(nil)) {
		t.Error("nulls should be equal")
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	row := dbhandler.Row{
		"n":    dbhandler.IntValue(1),
		"s":    dbhandler.StringValue("x"),
		"null": dbhandler.Null,
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"n":1,"null":null,"s":"x"}` {
		t.Errorf("json = %s", data)
	}
}

func TestDecimalValue(t *testing.T) {
	d := dbhandler.DecimalValue("12345678901234567.89")

	if d.Kind() != dbhandler.KindDecimal {
		t.Fatalf("kind = %v, want decimal", d.Kind())
	}
	if d.String() != "12345678901234567.89" {
		t.Errorf("String() = %q, digits must be kept", d.String())
	}
	if i, ok := d.Int(); !ok || i != 12345678901234567 {
		t.Errorf("Int() = %d, %v, want truncation", i, ok)
	}
	if f, ok := d.Float(); !ok || f != 12345678901234567.89 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if _, ok := dbhandler.DecimalValue("18446744073709551615").Int(); ok {
		t.Error("decimal beyond int64 should not convert to int")
	}
	if !d.Equal(dbhandler.DecimalValue("12345678901234567.89")) || d.Equal(dbhandler.StringValue("12345678901234567.89")) {
		t.Error("decimals compare by kind and text")
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "12345678901234567.89" {
		t.Errorf("MarshalJSON = %s, want an unrounded number literal", b)
	}
}
