//nullinfo:context nullable
package testdata

import "io"

// Repo stores users by name.
//
//nullinfo:context notnull
type Repo struct {
	Names  []string `nullable:"2"`
	Title  string
	Owner  *User
	Tags   map[string][]*User `nullable:"notnull,notnull,nullable,notnull"`
	Meta   any
	Conn   Handle
	Legacy Stat[int] //nullinfo:nullable 0

	// Backup is kept across restarts.
	//
	//nullinfo:context nullable
	Backup []byte

	cache map[string]*User
}

// User is a registered user.
type User struct {
	Name  string
	Email *string
	Notes []string
}

// Handle is a live connection.
//
//nullinfo:nullable 2
type Handle interface {
	io.Closer
}

// Box holds one value.
type Box[T any] struct {
	Value T
	Items []T
}

// Number is the set of numeric types a Stat can hold.
type Number interface {
	~int | ~int64 | ~float64
}

// Stat is an aggregate.
//
//nullinfo:context oblivious
type Stat[N Number] struct {
	Total N
}

// Ref holds a nilable value.
//
//nullinfo:context 0
type Ref[T interface{ *User | []string }] struct {
	Target T
}

// Lookup returns the names stored under key, or fallback.
//
//nullinfo:nullable 2
func (r *Repo) Lookup(key string, fallback []string) []string {
	return fallback
}

// Close closes the connection.
//
//nullinfo:context nullable
func (r *Repo) Close() error {
	return nil
}

// Find returns the user with the given name.
func (r *Repo) Find(name string) (*User, error) {
	return nil, nil
}

func (r *Repo) reset() {
	r.cache = nil
}

// NewRepo returns a repository holding names.
func NewRepo(names ...string) *Repo {
	return &Repo{Names: names}
}
