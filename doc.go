// Package hybridrag is a small retrieval engine that ranks stored text
// chunks against a query by combining embedding similarity with keyword
// overlap.
//
// An Engine owns a chunk store, an AI provider for embeddings and chat,
// a ranker, and an ingestion pipeline:
//
//	engine, err := hybridrag.NewEngine(hybridrag.WithAIConfig(ai.DefaultConfig()))
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	if _, err := engine.IngestFiles(ctx, "handbook.pdf"); err != nil {
//		return err
//	}
//	results, err := engine.Query(ctx, "vacation policy", 5, 0.75)
//
// Ask adds intent classification, query rewriting and answer generation
// on top of retrieval.
package hybridrag
