// Package items holds the marketplace item model and the code that turns raw
// feed items into typed items.
//
// # Model
//
// A Mod is one normalized affix: the stat it rolls, where on the item it
// lives (its Provenance) and an optional numeric Value. StoredItem is what the
// storage layer persists for every listed item; RequiredItem is the shape a
// loadout asks for, where each mod may carry a Constraint.
//
// The kind-specific part of an item is a closed set of Payload types (Gem,
// Armor, Weapon, Jewel, Flask, Accessory). Payloads marshal to JSON with a
// "kind" discriminator so they can be stored in a single column.
//
// # Classifier
//
// The Classifier maps a base type string ("Iron Hat") to its category and
// subcategory using a static table. An embedded default table ships with the
// package; LoadClassifier reads an alternative one.
//
// # Builder
//
// Builder combines a Resolver (the stat normalizer) and a Classifier:
//
//	b := items.NewBuilder(stats.Default(), items.DefaultClassifier())
//	stored, err := b.BuildStored(raw)
package items
