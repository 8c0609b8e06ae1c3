// Package prodex provides an embedded Go client for the prodex product
// pipeline: the same validate, upload, embed, index flow the HTTP API runs,
// wired in-process against Redis and an S3-compatible media bucket.
//
//	client, _ := prodex.New(ctx,
//	    prodex.WithRedis("localhost:6379", ""),
//	    prodex.WithS3(prodex.S3Config{Region: "eu-west-1", Bucket: "media"}),
//	    prodex.WithEmbedder(myEmbedder),
//	    prodex.WithCredential(token),
//	)
//	defer client.Close()
//
//	results, _ := client.Ingest(ctx, "acme", products)
//	sample, _ := client.Retrieve(ctx, "acme", 4)
package prodex
