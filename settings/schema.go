// SPDX-License-Identifier: EPL-2.0

package settings

// MaxNameLen is the longest kernel parameter name.
const MaxNameLen = 4

// Setting addresses one element of a kernel parameter. Param indexes
// Schema.Names.
type Setting struct {
	Param  int8
	Offset int16
}

// Schema describes what a cache row holds. Names is the index to name
// table of tunable parameters. Settings gives, for each column of a row,
// the parameter element it feeds. Consecutive columns with the same Param
// form one bulk parameter.
type Schema struct {
	Names    []string
	Settings []Setting
}

// Width returns the number of values in one row.
func (s *Schema) Width() int { return len(s.Settings) }

// Name returns the parameter name of index p.
func (s *Schema) Name(p int8) (string, bool) {
	if p < 0 || int(p) >= len(s.Names) {
		return "", false
	}
	return s.Names[p], true
}

// Param returns the index of the named parameter, or -1.
func (s *Schema) Param(name string) int8 {
	for i, n := range s.Names {
		if n == name {
			return int8(i)
		}
	}
	return -1
}

// Lengths returns the run length of every parameter in Settings. When a
// parameter appears in more than one run, the last run wins.
func (s *Schema) Lengths() map[int8]int {
	lengths := make(map[int8]int)
	run := 0
	for i, st := range s.Settings {
		run++
		if i+1 == len(s.Settings) || s.Settings[i+1].Param != st.Param {
			lengths[st.Param] = run
			run = 0
		}
	}
	return lengths
}
