package privilege

// Operation identifies one kind of storage access. The set is closed: it is
// defined here and never grows at runtime.
type Operation uint8

const (
	// OpAny matches any requested operation for rule purposes but carries no
	// privilege of its own.
	OpAny Operation = iota
	OpChmod
	OpChown
	OpCreate
	OpDelete
	OpInsert
	OpLock
	OpMkdir
	OpRead
	OpReaddir
	OpRename
	OpStat
	OpUpdate

	operationCount
)

var operationNames = [operationCount]string{
	OpAny:     "any",
	OpChmod:   "chmod",
	OpChown:   "chown",
	OpCreate:  "create",
	OpDelete:  "delete",
	OpInsert:  "insert",
	OpLock:    "lock",
	OpMkdir:   "mkdir",
	OpRead:    "read",
	OpReaddir: "readdir",
	OpRename:  "rename",
	OpStat:    "stat",
	OpUpdate:  "update",
}

// String returns the lower-case operation name, or "unknown" for values
// outside the enumeration.
func (o Operation) String() string {
	if o >= operationCount {
		return "unknown"
	}
	return operationNames[o]
}

// Valid reports whether o is a member of the enumeration.
func (o Operation) Valid() bool {
	return o < operationCount
}

// Parse resolves a lower-case operation name back to its Operation. Used by
// rule compilers that read operation names from token scopes or config.
func Parse(name string) (Operation, bool) {
	for op, n := range operationNames {
		if n == name {
			return Operation(op), true
		}
	}
	return 0, false
}

// Operations returns every member of the enumeration in declaration order.
func Operations() []Operation {
	ops := make([]Operation, operationCount)
	for i := range ops {
		ops[i] = Operation(i)
	}
	return ops
}
