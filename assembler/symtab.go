package assembler

// Symbol is a name bound to an address, as listed in table dumps.
type Symbol struct {
	Name    string
	Address int
}

// SymbolTable maps labels to addresses in definition order.
type SymbolTable struct {
	addrs map[string]int
	order []string
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{addrs: make(map[string]int)}
}

// Define binds name to addr. A name may be bound once.
func (t *SymbolTable) Define(name string, addr int) error {
	if name == "" || name == "*" {
		return nil
	}
	if _, ok := t.addrs[name]; ok {
		return &DefinitionError{Symbol: name, Msg: "duplicate symbol"}
	}
	t.addrs[name] = addr
	t.order = append(t.order, name)
	return nil
}

// Lookup returns the address bound to name.
func (t *SymbolTable) Lookup(name string) (int, bool) {
	addr, ok := t.addrs[name]
	return addr, ok
}

// Entries lists the table in definition order.
func (t *SymbolTable) Entries() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Symbol{Name: name, Address: t.addrs[name]})
	}
	return out
}

// LiteralTable holds literal pool entries. A literal is pending from its
// first reference until the next pool flush assigns its address.
type LiteralTable struct {
	addrs   map[string]int
	order   []string
	pending []string
}

// NewLiteralTable creates an empty table.
func NewLiteralTable() *LiteralTable {
	return &LiteralTable{addrs: make(map[string]int)}
}

// Pend queues a literal unless it is already pending or placed.
func (t *LiteralTable) Pend(lit string) bool {
	if _, ok := t.addrs[lit]; ok {
		return false
	}
	for _, p := range t.pending {
		if p == lit {
			return false
		}
	}
	t.pending = append(t.pending, lit)
	return true
}

// Pending returns queued literals in first-seen order.
func (t *LiteralTable) Pending() []string {
	return append([]string(nil), t.pending...)
}

// Place assigns addr to a pending literal and removes it from the queue.
func (t *LiteralTable) Place(lit string, addr int) {
	for i, p := range t.pending {
		if p == lit {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			break
		}
	}
	if _, ok := t.addrs[lit]; ok {
		return
	}
	t.addrs[lit] = addr
	t.order = append(t.order, lit)
}

// Lookup returns the address of a placed literal.
func (t *LiteralTable) Lookup(lit string) (int, bool) {
	addr, ok := t.addrs[lit]
	return addr, ok
}

// Entries lists placed literals in placement order.
func (t *LiteralTable) Entries() []Symbol {
	out := make([]Symbol, 0, len(t.order))
	for _, lit := range t.order {
		out = append(out, Symbol{Name: lit, Address: t.addrs[lit]})
	}
	return out
}
