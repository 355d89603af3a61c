// Package matching finds listed items that satisfy a required item.
//
// The engine asks the configured store.Searcher for candidates with the same
// base type, category and subcategory (and name, for uniques) that carry every
// stat id the required item does not ignore. It then walks the candidates in
// the order the searcher returned them and picks the first one whose mods
// satisfy every constraint. There is no ranking: a closer value later in the
// list never beats an earlier acceptable one.
//
// A required mod without an explicit constraint only needs to be present.
// Numeric constraints compare against a ranged value's midpoint and never
// accept a mod that has no number.
//
// # Routes
//
//	GET  /items  search stored items (?basetype=&category=&subcategory=&name=&mods=a,b&limit=)
//	POST /match  {"item": RawItem, "constraints": {stat_id: Constraint}} -> first fit or 404
package matching
