package exceltab

import "testing"

func TestBuildAggregate(t *testing.T) {
	cases := []struct {
		name     string
		op       Operation
		refs     []string
		template string
		want     string
		wantErr  bool
	}{
		{name: "sum range", op: OpSum, refs: []string{"B3:B10"}, want: "SUM(B3:B10)"},
		{name: "sum cells", op: OpSum, refs: []string{"B3", "C3"}, want: "SUM(B3,C3)"},
		{name: "subtraction cells", op: OpSubtraction, refs: []string{"B3", "C3"}, want: "B3-C3"},
		{name: "subtraction ranges", op: OpSubtraction, refs: []string{"B3:B5", "C3:C5"}, want: "SUM(B3:B5)-SUM(C3:C5)"},
		{name: "division", op: OpDivision, refs: []string{"B3", "C3"}, want: "B3/C3"},
		{name: "custom", op: OpCustom, refs: []string{"B3:B5", "C3:C5"}, template: "SUM(?)*COUNT(?)", want: "SUM(B3:B5)*COUNT(C3:C5)"},
		{name: "custom leftover placeholder", op: OpCustom, refs: []string{"B3"}, template: "SUM(?)+SUM(?)", wantErr: true},
		{name: "custom without template", op: OpCustom, refs: []string{"B3"}, wantErr: true},
		{name: "no refs", op: OpSum, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := buildAggregate(tc.op, tc.refs, tc.template)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildAggregate: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildConditionalSum(t *testing.T) {
	got := buildConditionalSum("", "B3:B5", []string{"C3:C5", "D3:D5"}, []string{`"east"`, "2024"})
	want := `SUMIFS(B3:B5,C3:C5,"east",D3:D5,2024)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestQuoteCriteria(t *testing.T) {
	if got := quoteCriteria("east"); got != `"east"` {
		t.Errorf("string: got %q", got)
	}
	if got := quoteCriteria(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("embedded quotes: got %q", got)
	}
	if got := quoteCriteria(10.5); got != "10.5" {
		t.Errorf("float: got %q", got)
	}
	if got := quoteCriteria(7); got != "7" {
		t.Errorf("int: got %q", got)
	}
}

func TestColNames(t *testing.T) {
	names := make(colNames)
	if got := names.cell(1, 3); got != "A3" {
		t.Errorf("cell: got %q", got)
	}
	if got := names.cell(28, 1); got != "AB1" {
		t.Errorf("wide cell: got %q", got)
	}
	if got := names.rangeRef(2, 3, 10); got != "B3:B10" {
		t.Errorf("range: got %q", got)
	}
	if got := qualify("Data", "B3:B10"); got != "Data!B3:B10" {
		t.Errorf("qualified: got %q", got)
	}
}
