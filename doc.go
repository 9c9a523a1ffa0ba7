// Package jointown distributes a fixed set of objects among persons so that
// everybody owns about the same number of objects.
//
// Each person declares a domain, the objects it is allowed to own. Persons
// join and leave one at a time. After every event the World reassigns objects
// so that no object a person could own stays free and capitals (numbers of
// owned objects) are as even as the domains allow.
//
// # Quick Start
//
//	w, err := jointown.New(10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w.AddPerson("", jointown.NewDomain(2, 3), false)    // person "0"
//	w.AddPerson("", jointown.NewDomain(2, 4, 5), false) // person "1"
//	fmt.Println(w.Ownership())                          // "--0011----"
//
// # Tiers
//
// Persons belong to one of two tiers:
//
//   - Normal persons share objects among themselves.
//   - Low-priority persons only use objects no normal person may own. A normal
//     person joining takes over every object of its domain held by a
//     low-priority person.
//
// # Evening Out
//
// Capitals are equalized by the Even-Out-Capitals Algorithm. The poorest
// person searches a shortest chain of exchanges towards a person at least two
// objects richer: it takes an object from the first owner on the chain, which
// takes one from the next, until the richer person gives one away. Domains of
// the poorest and the richest person need not overlap. The result is a local
// optimum: no single improving chain remains.
//
// # Observing
//
// Owners, Ownership, Capital and Snapshot read the current state. Subscribe
// streams a Snapshot after every step; the flow package replays textual event
// streams and cmd/jointown drives a World from files.
package jointown
