package numbering

import (
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		in   string
		want Path
		err  bool
	}{
		{"1", Path{1}, false},
		{"1.1", Path{1, 1}, false},
		{"2.3.14", Path{2, 3, 14}, false},
		{"", nil, true},
		{"1.", nil, true},
		{".1", nil, true},
		{"1..2", nil, true},
		{"1.0", nil, true},
		{"0", nil, true},
		{"-1.2", nil, true},
		{"1.a", nil, true},
	}
	for _, tc := range cases {
		got, err := ParsePath(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("ParsePath(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePath(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParsePath(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPath_Parent(t *testing.T) {
	if p := (Path{1, 1, 2}).Parent(); p.String() != "1.1" {
		t.Errorf("Parent(1.1.2) = %q, want 1.1", p.String())
	}
	if p := (Path{3}).Parent(); p != nil {
		t.Errorf("Parent(3) = %v, want nil", p)
	}
	// Parent is a copy; mutating it must not alias the child.
	child := Path{2, 5, 1}
	parent := child.Parent()
	parent[0] = 9
	if child[0] != 2 {
		t.Error("Parent aliases the child's backing array")
	}
}

func TestPath_Less(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1", "2", true},
		{"1", "1.1", true},
		{"1.2", "1.10", true},
		{"1.1.5", "1.2", true},
		{"2", "1.9", false},
		{"1.1", "1.1", false},
	}
	for _, tc := range cases {
		a, _ := ParsePath(tc.a)
		b, _ := ParsePath(tc.b)
		if got := a.Less(b); got != tc.want {
			t.Errorf("Less(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDetectGaps(t *testing.T) {
	parse := func(ss ...string) []Path {
		out := make([]Path, 0, len(ss))
		for _, s := range ss {
			p, err := ParsePath(s)
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", s, err)
			}
			out = append(out, p)
		}
		return out
	}

	cases := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"no gaps", []string{"1", "2", "1.1", "1.2"}, nil},
		{"missing sibling", []string{"1", "1.1", "1.1.1", "1.1.3"}, []string{"1.1.2"}},
		{"missing top level", []string{"1", "3"}, []string{"2"}},
		{"multiple levels", []string{"2", "2.2"}, []string{"1", "2.1"}},
		{"first sibling absent", []string{"1", "1.3"}, []string{"1.1", "1.2"}},
		{"empty", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectGaps(parse(tc.paths...))
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DetectGaps(%v) = %v, want %v", tc.paths, got, tc.want)
			}
		})
	}
}
