// Package program compiles a YAML description of a reactive program into an
// arrow over int64 values.
//
// A program is a tree of nodes. Each node is a mapping with exactly one key
// naming the node kind; the scalar "id" is accepted as shorthand for the
// identity node.
//
//	seq:
//	  - const: 1
//	  - log: A
//	  - pause: 1
//	  - par:
//	      left: {add: 1}
//	      right: {await: total}
//	      join: sum
//
// Node kinds:
//
//	id                      pass the value through
//	const: N                replace the value with N
//	add: N, mul: N          arithmetic on the value
//	log: label              record (instant, label, value) and pass through
//	pause: N                wait N instants
//	seq: [nodes]            run nodes one after another
//	par: {left, right, join, sync}
//	                        run left and right on the value and join the
//	                        results with sum, left or right
//	fork: node              spawn node and continue without waiting
//	loop: {while, body}     run body while the condition holds
//	emit: signal            emit the signal (with the value, if valued)
//	await: signal           wait for the next value of a valued signal
//	await_immediate: signal wait until the signal is present
//	present: {signal, then, else}
//	                        branch on presence in the current instant
//
// Conditions are a mapping with one of lt, le, gt, ge, eq, ne.
//
// Errors name the offending node by path, e.g. program.seq[2].loop.body.
package program
