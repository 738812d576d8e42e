package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cascs/internal"
)

func sampleRecords() []internal.Record {
	return []internal.Record{
		{ID: "GB-CASC-11111111", Name: "Alpha Club", Address: "1 High St, Town", Postcode: "AA1 1AA", Active: true},
		{ID: "GB-CASC-22222222", Name: "Beta Club", Address: "", Postcode: "", Active: false},
	}
}

func TestRegistryCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.csv")
	if err := WriteRegistry(path, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len=%d, want 2", len(loaded))
	}

	alpha := loaded["GB-CASC-11111111"]
	if alpha.Name != "Alpha Club" || alpha.Address != "1 High St, Town" || !alpha.Active {
		t.Fatalf("unexpected record: %+v", alpha)
	}
	if loaded["GB-CASC-22222222"].Active {
		t.Fatal("inactive record loaded as active")
	}
}

func TestRegistryCSVStableBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.csv")
	if err := WriteRegistry(path, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,name,address,postcode,active\n" +
		"GB-CASC-11111111,Alpha Club,\"1 High St, Town\",AA1 1AA,true\n" +
		"GB-CASC-22222222,Beta Club,,,false\n"
	if string(blob) != want {
		t.Fatalf("csv bytes drifted:\n%q\nwant:\n%q", blob, want)
	}
}

func TestRegistryJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.json")
	if err := WriteRegistry(path, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len=%d, want 2", len(loaded))
	}
	if loaded["GB-CASC-11111111"].Postcode != "AA1 1AA" {
		t.Fatalf("unexpected record: %+v", loaded["GB-CASC-11111111"])
	}
}

func TestRegistryJSONNullPostcode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.json")
	if err := WriteRegistry(path, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(blob), `"postcode": null`) {
		t.Fatalf("missing postcode not serialized as null:\n%s", blob)
	}
	if !strings.Contains(string(blob), `"postcode": "AA1 1AA"`) {
		t.Fatalf("present postcode not serialized as string:\n%s", blob)
	}

	loaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded["GB-CASC-22222222"].Postcode != "" {
		t.Fatalf("null postcode loaded as %q", loaded["GB-CASC-22222222"].Postcode)
	}
}

func TestRegistryXLSXWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.xlsx")
	if err := WriteRegistry(path, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := ParseRows(path, blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want header+2", len(rows))
	}
	if rows[0][0] != "id" || rows[1][1] != "Alpha Club" {
		t.Fatalf("unexpected sheet contents: %+v", rows[:2])
	}
}

func TestLoadRegistryUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascs.txt")
	if err := os.WriteFile(path, []byte("id\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	loaded, err := LoadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty registry, got %d", len(loaded))
	}
}

func TestValidateOutputPaths(t *testing.T) {
	if err := ValidateOutputPaths([]string{"a.csv", "b.json", "c.xlsx"}); err != nil {
		t.Fatal(err)
	}
	if err := ValidateOutputPaths([]string{"a.csv", "b.yaml"}); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestWriteMatchReportBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "name_match.csv")
	pairs := []internal.MatchPair{{ID1: "GB-CASC-aaaaaaaa", ID2: "GB-CASC-bbbbbbbb", Key: "alpha club"}}
	if err := WriteMatchReport(path, pairs); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id1,id2,name\nGB-CASC-aaaaaaaa,GB-CASC-bbbbbbbb,alpha club\n"
	if string(blob) != want {
		t.Fatalf("report bytes drifted:\n%q", blob)
	}
}
