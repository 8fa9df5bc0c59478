// Package subscription fetches a remote source-list payload and merges it
// into the admin configuration. The remote payload only ever governs
// entries it provided in the first place; sources an admin added by hand
// survive every refresh.
package subscription
