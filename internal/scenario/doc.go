// Package scenario loads YAML scenario files and runs them against a
// statestream runtime.
//
// A scenario declares streams, the streams to watch and a list of steps:
//
//	streams:
//	  - name: a
//	    initial: A
//	  - name: b
//	    initial: B
//	  - name: c
//	    initial: C
//	    sources: [a, b]
//	    emitters:
//	      rename: {op: set}
//	watch: [c]
//	steps:
//	  - {stream: a, set: AA}
//	  - {stream: c, emit: rename, args: [CC]}
//	  - {stream: c, dispose: true}
//
// Emitter ops are set, add, append and merge. A step carries exactly one of
// set, add, emit (with optional args) or dispose.
//
// Run writes every watched emission as a JSON line:
//
//	{"seq":1,"stream":"c","value":{"a":"A","b":"B","c":"C"}}
package scenario
