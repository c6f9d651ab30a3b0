// Package unlower reconstructs which source expression each IR
// instruction was lowered from.
//
// Lowering flattens nested source expressions into sequences of IR
// instructions, splitting one expression across several locations and
// inventing temporaries along the way. The rewrite pipeline works the
// other way around: it decides changes on the IR and must splice them
// back into source text, so it needs the inverse of lowering.
//
// The pass runs in two phases. First it indexes every IR instruction by
// its exact source span. Then it walks the expression tree and, for
// each expression whose span matches one or more instructions,
// classifies the instruction list by the expression's shape:
//
//   - an assignment is expected to lower to exactly one store,
//   - a call is expected to end with a call terminator storing into a
//     plain local, with arguments paired positionally,
//   - anything else is expected to end with a plain store into a local.
//
// A shape mismatch is a soft failure: the expression gets no origin and
// the rewrites over it are dropped later. Instruction lists longer than
// the shape consumes leave the extra locations unconsumed; they are
// reported and skipped rather than decomposed further.
package unlower
