package privilege

import "strings"

// Mask is a set of independently grantable privileges. Rules combine their
// privileges into a Mask by bitwise union; an empty Mask means "no opinion",
// never "explicit deny".
type Mask uint32

// None is the empty mask.
const None Mask = 0

const (
	Chmod Mask = 1 << iota
	Chown
	Create
	Delete
	Insert
	Lock
	Mkdir
	Read
	Readdir
	Rename
	// Lookup is the path-resolution privilege granted by stat operations.
	Lookup
	Update

	maskBitCount = iota
)

// All holds every privilege bit.
const All Mask = 1<<maskBitCount - 1

var maskBitNames = [maskBitCount]string{
	"chmod",
	"chown",
	"create",
	"delete",
	"insert",
	"lock",
	"mkdir",
	"read",
	"readdir",
	"rename",
	"lookup",
	"update",
}

// privilegeOf is the fixed Operation→Mask table. OpAny maps to None: an
// any-scoped rule matches every request but grants nothing by itself.
var privilegeOf = [operationCount]Mask{
	OpAny:     None,
	OpChmod:   Chmod,
	OpChown:   Chown,
	OpCreate:  Create,
	OpDelete:  Delete,
	OpInsert:  Insert,
	OpLock:    Lock,
	OpMkdir:   Mkdir,
	OpRead:    Read,
	OpReaddir: Readdir,
	OpRename:  Rename,
	OpStat:    Lookup,
	OpUpdate:  Update,
}

// Of returns the privilege bit granted by op. Pure and total: unknown values
// and OpAny return None.
func Of(op Operation) Mask {
	if op >= operationCount {
		return None
	}
	return privilegeOf[op]
}

// Has reports whether every privilege in p is held by m.
func (m Mask) Has(p Mask) bool {
	return m&p == p
}

// Union returns the combination of m and p.
func (m Mask) Union(p Mask) Mask {
	return m | p
}

// String renders the mask as pipe-joined bit names, or "none" when empty.
func (m Mask) String() string {
	if m == None {
		return "none"
	}

	var b strings.Builder
	for bit := 0; bit < maskBitCount; bit++ {
		if m&(1<<bit) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(maskBitNames[bit])
	}
	return b.String()
}
