// Package tdsqa embeds the TDS question answering pipeline in a Go program,
// without running the HTTP server.
//
// # Vector index
//
//	client, _ := tdsqa.New(ctx,
//	    tdsqa.WithOpenAI(os.Getenv("AIPROXY_TOKEN"), ""),
//	    tdsqa.WithVectorIndex("data/index.gob", "data/meta.json"),
//	)
//	defer client.Close()
//	ans, _ := client.Ask(ctx, tdsqa.Query{Question: "How do I submit GA1?"})
//
// # Live scrape
//
//	client, _ := tdsqa.New(ctx,
//	    tdsqa.WithOpenAI(key, ""),
//	    tdsqa.WithScrape("https://tds.s-anand.net/", "https://discourse.onlinedegree.iitm.ac.in"),
//	    tdsqa.WithoutOCR(),
//	)
//
// Embedding and completion failures are returned as *PipelineError; OCR and
// fetch failures only shrink the context the model sees.
package tdsqa
