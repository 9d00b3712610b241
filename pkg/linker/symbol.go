package linker

import "sort"

// SymbolTable maps every global symbol name to the module defining it. A name
// has exactly one owner for the lifetime of a link run.
type SymbolTable struct {
	owners map[string]*ObjectFile
}

// NewSymbolTable returns an empty global symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{owners: make(map[string]*ObjectFile)}
}

// Register records file as the owner of name. The table is left unchanged
// when name already has an owner.
func (t *SymbolTable) Register(name string, file *ObjectFile) error {
	if prev, ok := t.owners[name]; ok {
		return &DuplicateSymbolError{Symbol: name, File: file.Name, Previous: prev.Name}
	}
	t.owners[name] = file
	return nil
}

func (t *SymbolTable) Lookup(name string) (*ObjectFile, bool) {
	file, ok := t.owners[name]
	return file, ok
}

func (t *SymbolTable) Len() int {
	return len(t.owners)
}

func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.owners))
	for name := range t.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
