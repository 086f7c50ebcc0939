package suggestion

// Store accumulates suggestions for a single analysis run. Identifiers are
// assigned as the count of stored suggestions plus one, so they form the dense
// range 1..N. A new run starts with a new Store.
type Store struct {
	clock       Clock
	suggestions []Suggestion
}

// NewStore constructs an empty store stamping suggestions with dates from clock.
func NewStore(clock Clock) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Store{clock: clock}
}

// Add converts the finding into a suggestion with the next identifier and appends it.
func (store *Store) Add(finding Finding) Suggestion {
	created := Suggestion{
		ID:          len(store.suggestions) + 1,
		Category:    finding.Category,
		Title:       finding.Title,
		Description: finding.Description,
		FilePaths:   append([]string{}, finding.FilePaths...),
		Priority:    finding.Priority,
		CreatedDate: store.clock.Now().Format(createdDateLayoutConstant),
		Remediation: Remediation{
			Kind:     finding.Remediation.Kind,
			Subjects: append([]string(nil), finding.Remediation.Subjects...),
		},
	}
	store.suggestions = append(store.suggestions, created)
	return created.clone()
}

// AddAll appends every finding in order.
func (store *Store) AddAll(findings []Finding) {
	for _, finding := range findings {
		store.Add(finding)
	}
}

// Len returns the number of stored suggestions.
func (store *Store) Len() int {
	return len(store.suggestions)
}

// All returns a copy of the stored suggestions in identifier order.
func (store *Store) All() []Suggestion {
	duplicated := make([]Suggestion, 0, len(store.suggestions))
	for _, stored := range store.suggestions {
		duplicated = append(duplicated, stored.clone())
	}
	return duplicated
}
