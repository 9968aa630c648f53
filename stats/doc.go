// Package stats contains the per-frame statistics record, the ingestion API
// which the decoder calls at phase boundaries (Recorder), the attribution of
// nested time measurements into mutually-exclusive buckets, and the
// in-memory record buffer.
//
// A typical frame looks like:
//
//	rec.Reset(frameNumber)
//	frame := rec.BeginFrame()
//	rec.BeginPhase(types.PhaseIntraCU)
//	cabac := rec.BeginCABAC()
//	... // entropy decoding
//	rec.EndCABAC(cabac) // attributed away from intra_cu
//	rec.EndPhase(types.PhaseIntraCU)
//	rec.EndFrame(frame)
//	buffer.Push(rec.Snapshot())
package stats
