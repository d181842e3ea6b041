// Package cart manages the client-local shopping cart.
//
// Every mutation is synchronous: the item list changes, totals are
// recomputed from it and the whole list is written to the store under the
// "cart" key before the call returns. Storage failures are logged and
// otherwise ignored; an unreadable entry at startup is an empty cart.
package cart
