package surveyio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terrane-data/curvetrace/internal/trend"
)

func TestPointsRoundTrip(t *testing.T) {
	pts := []trend.Point{
		{Index: 0, X: 1.5, Y: -2.25, Z: 10.125, Part: "L1", Value: 2},
		{Index: 7, X: 1e-7, Y: 42, Z: 0, Part: "", Value: 0},
		{Index: 2, X: 361712.04, Y: 6512345.5, Z: -3.5, Part: "L2", Value: 1},
	}

	var buf bytes.Buffer
	if err := WritePoints(&buf, pts); err != nil {
		t.Fatalf("WritePoints: %v", err)
	}
	got, err := ReadPoints(&buf)
	if err != nil {
		t.Fatalf("ReadPoints: %v", err)
	}
	if diff := cmp.Diff(pts, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPointsFlexibleHeader(t *testing.T) {
	in := "Y,x,VALUE\n2,1,3.5\n4,3,\n"
	got, err := ReadPoints(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPoints: %v", err)
	}
	want := []trend.Point{
		{Index: 0, X: 1, Y: 2, Value: 3.5},
		{Index: 1, X: 3, Y: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPointsMissingRequiredColumn(t *testing.T) {
	_, err := ReadPoints(strings.NewReader("x,z\n1,2\n"))
	if err == nil || !strings.Contains(err.Error(), "no y column") {
		t.Fatalf("err = %v, want missing y column", err)
	}
}

func TestReadPointsBadCellReportsRow(t *testing.T) {
	_, err := ReadPoints(strings.NewReader("x,y\n1,5\n1,two\n"))
	if err == nil || !strings.Contains(err.Error(), "row 3") {
		t.Fatalf("err = %v, want row 3 in message", err)
	}
}

func TestReadPointsEmptyInput(t *testing.T) {
	if _, err := ReadPoints(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
