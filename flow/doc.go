// Package flow replays streams of person events against a World.
//
// Events use a compact text encoding, one event per line:
//
//	{2, 3}        add a normal person with domain {2, 3}, named automatically
//	{2, 3, -1}    add a low-priority person: -1 marks the tier and is dropped
//	+2,3          add a normal person (short form)
//	L2,3          add a low-priority person (short form)
//	Vasia:1,2,3   add a normal person named Vasia
//	Masha:L0,9    add a low-priority person named Masha
//	-2            remove person "2"
//
// A Scenario bundles the number of objects with a list of events and the
// ownership string expected after each of them, so that whole runs can be
// stored as YAML files and replayed by the Runner or the jointown command.
package flow
