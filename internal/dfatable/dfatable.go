// Package dfatable builds a single combined, minimized DFA across every
// token pattern supplied to it, and serializes the result into the table
// format consumed by the lexer runtime.
//
// The pipeline mirrors a textbook lexer generator: subset construction
// determinizes the NFA (picking, for each resulting DFA state, the
// highest-priority / earliest-declared accepting NFA state in that state's
// subset), then Hopcroft partition refinement minimizes the result, then
// totalization adds an explicit sink state so every (state, symbol) pair has
// a transition.
package dfatable

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hassandahiru/scriptum/internal/regex"
)

// PatternDef is one declarative token pattern fed into Build.
type PatternDef struct {
	Name     string
	Pattern  string
	Priority int
	Ignore   bool
	KindTag  string
}

// ErrLimitExceeded is returned by Build when a pattern set would produce an
// automaton larger than the configured resource limits.
type ErrLimitExceeded struct {
	Limit string
}

func (e *ErrLimitExceeded) Error() string {
	return fmt.Sprintf("dfatable: limit exceeded: %s", e.Limit)
}

const (
	maxNFAStates = 1 << 16
	maxDFAStates = 1 << 14
)

// Accepting records which pattern a DFA state accepts, if any.
type Accepting struct {
	Name     string
	Priority int
	Order    int
	Ignore   bool
	KindTag  string
}

// DFA is a totalized, minimized deterministic automaton indexed by a dense
// alphabet: Alphabet holds sorted interval starts, class index i covers the
// runes from Alphabet[i] up to (not including) Alphabet[i+1], and
// Trans[state][class] is always a valid state (the sink state has all
// self-transitions).
type DFA struct {
	Alphabet []rune
	States   int
	Start    int
	Trans    [][]int
	Accept   []*Accepting // len == States; nil entry means non-accepting
}

// classIndex returns the index of the alphabet interval containing r, or -1
// if r lies below the first interval start (callers route those runes to a
// reserved "other" class that is always present so the DFA stays total over
// all of Unicode's scalar values, not just the ones literally seen in
// patterns).
func classIndex(alphabet []rune, r rune) int {
	lo, hi := 0, len(alphabet)
	for lo < hi {
		mid := (lo + hi) / 2
		if alphabet[mid] <= r {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// ClassOf exposes classIndex plus the "other" fallback class (always the
// last column) to the lexer runtime.
func (d *DFA) ClassOf(r rune) int {
	if idx := classIndex(d.Alphabet, r); idx >= 0 {
		return idx
	}
	return len(d.Alphabet) // the reserved "other" class
}

// Build runs the full pipeline (combined NFA -> subset construction ->
// Hopcroft minimization -> totalization) over defs, in declaration order
// (defs[i]'s Order is i).
func Build(defs []PatternDef) (*DFA, error) {
	builder := regex.NewBuilder()
	for i, def := range defs {
		err := builder.AddPattern(def.Pattern, regex.AcceptInfo{
			Name:     def.Name,
			Priority: def.Priority,
			Order:    i,
			Ignore:   def.Ignore,
			KindTag:  def.KindTag,
		})
		if err != nil {
			return nil, fmt.Errorf("dfatable: pattern %q: %w", def.Name, err)
		}
	}
	nfa := builder.Build()
	if len(nfa.States) > maxNFAStates {
		return nil, &ErrLimitExceeded{Limit: "max NFA states"}
	}

	alphabet := collectAlphabet(nfa)

	raw, err := subsetConstruct(nfa, alphabet)
	if err != nil {
		return nil, err
	}

	min := minimize(raw)
	totalize(min)
	return min, nil
}

// collectAlphabet gathers every distinct interval boundary of any pattern's
// character ranges (each range's Lo and Hi+1), sorted ascending, so every
// rune between two consecutive boundaries is matched by exactly the same
// classes. The DFA alphabet is this sorted set of codepoints plus one
// trailing "other" class that absorbs every rune below the first boundary,
// per the spec's "alphabet is the union of character symbols referenced"
// plus totality over arbitrary input.
func collectAlphabet(nfa *regex.NFA) []rune {
	seen := make(map[rune]bool)
	for _, st := range nfa.States {
		for _, tr := range st.Transitions {
			if tr.Class.Any {
				continue
			}
			for _, rg := range tr.Class.Ranges {
				seen[rg.Lo] = true
				seen[rg.Hi+1] = true
			}
		}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

// matches reports whether class accepts r.
func classMatches(class regex_CharClass, r rune) bool {
	if class.Any {
		return true
	}
	covered := false
	for _, rg := range class.Ranges {
		if r >= rg.Lo && r <= rg.Hi {
			covered = true
			break
		}
	}
	if class.Negated {
		return !covered
	}
	return covered
}

// regex_CharClass is a local alias to avoid importing regex's exported
// CharClass name twice in this file's signatures; it is structurally
// identical to regex.CharClass.
type regex_CharClass = regex.CharClass

// subsetKey canonicalizes a set of NFA state ids into a sorted slice usable
// as a map key.
func subsetKey(states map[int]bool) string {
	ids := make([]int, 0, len(states))
	for s := range states {
		ids = append(ids, s)
	}
	sort.Ints(ids)
	key := make([]byte, 0, len(ids)*5)
	for _, id := range ids {
		key = append(key, []byte(fmt.Sprintf("%d,", id))...)
	}
	return string(key)
}

func subsetConstruct(nfa *regex.NFA, alphabet []rune) (*DFA, error) {
	classCount := len(alphabet) + 1 // + "other"

	startClosure := regex.EpsilonClosure(nfa, []int{nfa.Start})
	startKey := subsetKey(startClosure)

	type dfaState struct {
		subset map[int]bool
	}
	var states []dfaState
	keyToID := map[string]int{startKey: 0}
	states = append(states, dfaState{subset: startClosure})

	var trans [][]int
	var accept []*Accepting

	queue := []int{0}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if len(states) > maxDFAStates {
			return nil, &ErrLimitExceeded{Limit: "max DFA states"}
		}
		subset := states[id].subset

		row := make([]int, classCount)
		for class := 0; class < classCount; class++ {
			var r rune
			if class < len(alphabet) {
				r = alphabet[class]
			} else {
				r = unusedRune(alphabet)
			}

			var targets []int
			for s := range subset {
				for _, tr := range nfa.States[s].Transitions {
					if classMatches(tr.Class, r) {
						targets = append(targets, tr.Target)
					}
				}
			}
			if len(targets) == 0 {
				row[class] = -1
				continue
			}
			closure := regex.EpsilonClosure(nfa, targets)
			key := subsetKey(closure)
			nextID, ok := keyToID[key]
			if !ok {
				nextID = len(states)
				keyToID[key] = nextID
				states = append(states, dfaState{subset: closure})
				queue = append(queue, nextID)
			}
			row[class] = nextID
		}

		for len(trans) <= id {
			trans = append(trans, nil)
			accept = append(accept, nil)
		}
		trans[id] = row
		accept[id] = selectAccepting(nfa, subset)
	}

	return &DFA{
		Alphabet: alphabet,
		States:   len(states),
		Start:    0,
		Trans:    trans,
		Accept:   accept,
	}, nil
}

// unusedRune returns a rune past the highest range end, covered by no
// pattern range, used to probe the "other" class's transition behavior
// (every rune outside all ranges takes the same transition, by construction
// of classMatches).
func unusedRune(alphabet []rune) rune {
	if len(alphabet) == 0 {
		return 0xFFFF
	}
	return alphabet[len(alphabet)-1] + 1
}

// selectAccepting resolves the accept tag for a DFA state's NFA subset: the
// highest-priority accept wins; ties broken by lowest declaration order.
func selectAccepting(nfa *regex.NFA, subset map[int]bool) *Accepting {
	var best *regex.AcceptInfo
	for s := range subset {
		info := nfa.States[s].Accept
		if info == nil {
			continue
		}
		if best == nil || info.Priority > best.Priority ||
			(info.Priority == best.Priority && info.Order < best.Order) {
			best = info
		}
	}
	if best == nil {
		return nil
	}
	return &Accepting{
		Name:     best.Name,
		Priority: best.Priority,
		Order:    best.Order,
		Ignore:   best.Ignore,
		KindTag:  best.KindTag,
	}
}

// minimize runs Hopcroft-style partition refinement over d, producing a DFA
// with states merged by equivalence (same acceptance, same transition
// behavior under every symbol, recursively).
func minimize(d *DFA) *DFA {
	classCount := len(d.Alphabet) + 1

	groupKey := func(acc *Accepting) string {
		if acc == nil {
			return ""
		}
		return acc.Name
	}

	partition := make(map[string][]int)
	for s := 0; s < d.States; s++ {
		partition[groupKey(d.Accept[s])] = append(partition[groupKey(d.Accept[s])], s)
	}

	stateToGroup := make([]int, d.States)
	groups := make([][]int, 0, len(partition))
	for _, members := range partition {
		groupID := len(groups)
		groups = append(groups, members)
		for _, s := range members {
			stateToGroup[s] = groupID
		}
	}

	changed := true
	for changed {
		changed = false
		var newGroups [][]int
		newStateToGroup := make([]int, d.States)

		for _, members := range groups {
			signature := func(s int) string {
				key := ""
				for class := 0; class < classCount; class++ {
					target := d.Trans[s][class]
					g := -1
					if target >= 0 {
						g = stateToGroup[target]
					}
					key += fmt.Sprintf("%d,", g)
				}
				return key
			}

			buckets := make(map[string][]int)
			order := []string{}
			for _, s := range members {
				sig := signature(s)
				if _, ok := buckets[sig]; !ok {
					order = append(order, sig)
				}
				buckets[sig] = append(buckets[sig], s)
			}

			if len(buckets) > 1 {
				changed = true
			}
			for _, sig := range order {
				groupID := len(newGroups)
				newGroups = append(newGroups, buckets[sig])
				for _, s := range buckets[sig] {
					newStateToGroup[s] = groupID
				}
			}
		}

		groups = newGroups
		stateToGroup = newStateToGroup
	}

	newStates := len(groups)
	newTrans := make([][]int, newStates)
	newAccept := make([]*Accepting, newStates)
	for g, members := range groups {
		rep := members[0]
		row := make([]int, classCount)
		for class := 0; class < classCount; class++ {
			target := d.Trans[rep][class]
			if target < 0 {
				row[class] = -1
			} else {
				row[class] = stateToGroup[target]
			}
		}
		newTrans[g] = row
		newAccept[g] = d.Accept[rep]
	}

	return &DFA{
		Alphabet: d.Alphabet,
		States:   newStates,
		Start:    stateToGroup[d.Start],
		Trans:    newTrans,
		Accept:   newAccept,
	}
}

// totalize adds an explicit sink state (non-accepting, self-looping on
// every symbol) and redirects every dangling (-1) transition to it, so the
// lexer runtime never has to special-case "no transition."
func totalize(d *DFA) {
	classCount := len(d.Alphabet) + 1
	sink := d.States
	needsSink := false
	for _, row := range d.Trans {
		for _, target := range row {
			if target < 0 {
				needsSink = true
			}
		}
	}
	if !needsSink {
		return
	}

	sinkRow := make([]int, classCount)
	for c := range sinkRow {
		sinkRow[c] = sink
	}
	d.Trans = append(d.Trans, sinkRow)
	d.Accept = append(d.Accept, nil)
	d.States++

	for _, row := range d.Trans[:sink] {
		for c, target := range row {
			if target < 0 {
				row[c] = sink
			}
		}
	}
}

// Table is the JSON-serializable form of a DFA, matching the external
// {alphabet, states, start, trans, finals, accept_entries} schema.
type Table struct {
	Alphabet     []rune          `json:"alphabet"`
	States       int             `json:"states"`
	Start        int             `json:"start"`
	Trans        [][]int         `json:"trans"`
	Finals       []int           `json:"finals"`
	AcceptEntries []AcceptEntry  `json:"accept_entries"`
}

// AcceptEntry is the accept tag for one final state, indexed by position in
// Finals.
type AcceptEntry struct {
	State    int    `json:"state"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Order    int    `json:"order"`
	Ignore   bool   `json:"ignore"`
	Kind     string `json:"kind"`
}

// Encode converts a built DFA into its serializable Table form.
func Encode(d *DFA) *Table {
	t := &Table{
		Alphabet: append([]rune{}, d.Alphabet...),
		States:   d.States,
		Start:    d.Start,
		Trans:    d.Trans,
	}
	for s := 0; s < d.States; s++ {
		if d.Accept[s] == nil {
			continue
		}
		t.Finals = append(t.Finals, s)
		acc := d.Accept[s]
		t.AcceptEntries = append(t.AcceptEntries, AcceptEntry{
			State:    s,
			Name:     acc.Name,
			Priority: acc.Priority,
			Order:    acc.Order,
			Ignore:   acc.Ignore,
			Kind:     acc.KindTag,
		})
	}
	return t
}

// Decode reconstructs a DFA from its serialized Table form.
func Decode(t *Table) *DFA {
	d := &DFA{
		Alphabet: append([]rune{}, t.Alphabet...),
		States:   t.States,
		Start:    t.Start,
		Trans:    t.Trans,
		Accept:   make([]*Accepting, t.States),
	}
	for _, entry := range t.AcceptEntries {
		d.Accept[entry.State] = &Accepting{
			Name:     entry.Name,
			Priority: entry.Priority,
			Order:    entry.Order,
			Ignore:   entry.Ignore,
			KindTag:  entry.Kind,
		}
	}
	return d
}

// MarshalJSON/UnmarshalJSON on Table are provided implicitly by the
// exported json tags above; ToJSON/FromJSON are convenience wrappers used
// by cmd/gentable and internal/lexer's table loader.

// ToJSON serializes a DFA directly to JSON bytes.
func ToJSON(d *DFA) ([]byte, error) {
	return json.MarshalIndent(Encode(d), "", "  ")
}

// FromJSON deserializes a DFA from JSON bytes.
func FromJSON(data []byte) (*DFA, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("dfatable: decode table: %w", err)
	}
	return Decode(&t), nil
}
