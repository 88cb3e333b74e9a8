package authz

import (
	"fmt"
	"slices"
	"strings"
)

// extra actions understood by a module that no role table lists; only the
// superadmin and admin branches can grant them.
var moduleOverrides = map[Module][]Action{
	ModuleProfile: {ActionHardDelete},
	ModuleLeave:   {ActionForceEdit},
}

// Engine evaluates policy tables. It is immutable after construction and
// safe for concurrent use.
type Engine struct {
	tables     Tables
	vocabulary map[Module]map[Action]struct{}
	subVocab   map[SubResource]map[Action]struct{}
}

var defaultEngine = MustNewEngine(DefaultTables())

// Default returns the engine built from DefaultTables.
func Default() *Engine {
	return defaultEngine
}

// NewEngine validates the tables and builds an Engine. Every module and
// sub-resource must carry an entry for every role.
func NewEngine(tables Tables) (*Engine, error) {
	e := &Engine{
		tables:     tables,
		vocabulary: make(map[Module]map[Action]struct{}, len(tables.Modules)),
		subVocab:   make(map[SubResource]map[Action]struct{}, len(tables.SubActions)),
	}
	for _, m := range Modules() {
		byRole, ok := tables.Modules[m]
		if !ok {
			return nil, fmt.Errorf("%w: module %s has no table", ErrIncompleteTable, m)
		}
		vocab := make(map[Action]struct{})
		for _, role := range Roles() {
			p, ok := byRole[role]
			if !ok {
				return nil, fmt.Errorf("%w: module %s has no entry for %s", ErrIncompleteTable, m, role)
			}
			for _, a := range slices.Concat(p.Actions, p.Verbs) {
				vocab[a] = struct{}{}
				vocab[baseAction(a)] = struct{}{}
			}
		}
		for _, a := range moduleOverrides[m] {
			vocab[a] = struct{}{}
		}
		e.vocabulary[m] = vocab
	}
	for _, sub := range subResources() {
		byRole, ok := tables.SubActions[sub]
		if !ok {
			return nil, fmt.Errorf("%w: sub-resource %s has no table", ErrIncompleteTable, sub)
		}
		vocab := make(map[Action]struct{})
		for _, role := range Roles() {
			actions, ok := byRole[role]
			if !ok {
				return nil, fmt.Errorf("%w: sub-resource %s has no entry for %s", ErrIncompleteTable, sub, role)
			}
			for _, a := range actions {
				vocab[a] = struct{}{}
			}
		}
		e.subVocab[sub] = vocab
	}
	for _, role := range Roles() {
		if _, ok := tables.MessageFields[role]; !ok {
			return nil, fmt.Errorf("%w: message fields have no entry for %s", ErrIncompleteTable, role)
		}
		if _, ok := tables.LeaveTypes[role]; !ok {
			return nil, fmt.Errorf("%w: leave types have no entry for %s", ErrIncompleteTable, role)
		}
		if _, ok := tables.ChatTypes[role]; !ok {
			return nil, fmt.Errorf("%w: chat types have no entry for %s", ErrIncompleteTable, role)
		}
	}
	return e, nil
}

// MustNewEngine is like NewEngine but panics on invalid tables.
func MustNewEngine(tables Tables) *Engine {
	e, err := NewEngine(tables)
	if err != nil {
		panic(err)
	}
	return e
}

// Policy returns a copy of the table entry for (module, role).
func (e *Engine) Policy(m Module, role Role) (Policy, error) {
	p, err := e.policy(m, role)
	if err != nil {
		return Policy{}, err
	}
	return Policy{
		Actions: slices.Clone(p.Actions),
		Verbs:   slices.Clone(p.Verbs),
		Fields: FieldPermissions{
			CanEdit:    slices.Clone(p.Fields.CanEdit),
			CanView:    slices.Clone(p.Fields.CanView),
			Restricted: slices.Clone(p.Fields.Restricted),
		},
	}, nil
}

// PoliciesFor returns every module entry for role.
func (e *Engine) PoliciesFor(role Role) (map[Module]Policy, error) {
	out := make(map[Module]Policy, len(e.tables.Modules))
	for _, m := range Modules() {
		p, err := e.Policy(m, role)
		if err != nil {
			return nil, err
		}
		out[m] = p
	}
	return out, nil
}

func (e *Engine) policy(m Module, role Role) (Policy, error) {
	if !role.Valid() {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	byRole, ok := e.tables.Modules[m]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownModule, m)
	}
	p, ok := byRole[role]
	if !ok {
		return Policy{}, fmt.Errorf("%w: module %s has no entry for %s", ErrIncompleteTable, m, role)
	}
	return p, nil
}

// lookup resolves the policy and rejects actions the module has never heard of.
func (e *Engine) lookup(m Module, role Role, action Action) (Policy, error) {
	p, err := e.policy(m, role)
	if err != nil {
		return Policy{}, err
	}
	if _, ok := e.vocabulary[m][action]; !ok {
		return Policy{}, fmt.Errorf("%w: %s has no action %q", ErrUnknownAction, m, action)
	}
	return p, nil
}

func (e *Engine) subActions(sub SubResource, role Role, action Action) ([]Action, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	vocab, ok := e.subVocab[sub]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, sub)
	}
	if _, ok := vocab[action]; !ok {
		return nil, fmt.Errorf("%w: %s has no action %q", ErrUnknownAction, sub, action)
	}
	return e.tables.SubActions[sub][role], nil
}

func baseAction(a Action) Action {
	s := string(a)
	for _, suffix := range []string{ownSuffix, assignedSuffix} {
		if base, ok := strings.CutSuffix(s, suffix); ok {
			return Action(base)
		}
	}
	return a
}
