// Package nullinfo reconstructs nullability information from compiled
// annotation metadata.
//
// Compilers that track nullable reference types emit two kinds of metadata
// entries: a per-position encoding attached to members, parameters and types
// (meta.NullableAttribute), and a scope-level default attached to enclosing
// types and methods (meta.NullableContextAttribute). Given a type descriptor
// and the entries around it, a Resolver builds an Info tree whose shape
// mirrors the type and records, for every structural position, whether it is
// Unknown, NotNull or Nullable.
//
// Example:
//
//	r := nullinfo.NewResolver()
//	info := r.ForProperty(prop)
//	if nullinfo.IsNullable(info) {
//	    // emit a nullable marshaler
//	}
//
// The resolver never fails: absent or malformed metadata yields Unknown.
package nullinfo
