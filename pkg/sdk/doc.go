// Package doccat provides an embedded Go client for the doccat document
// catalog backed by Redis.
//
// Documents are arbitrary JSON blobs addressed by content hash, tagged with
// a document type and key/value labels. Shared labels link documents, and
// the search service walks those links transitively.
//
//	client, _ := doccat.New(ctx, doccat.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	client.Documents().Upsert(ctx, []doccat.DocumentInput{{
//	    Hash: "sha256:...", Type: "dns", CreatedBy: "scanner",
//	    Payload: payload,
//	    Labels: []doccat.LabelPair{{Key: "domain", Value: "example.com"}},
//	}})
//
//	report, _ := client.Documents().Search(ctx, seedID,
//	    []doccat.LabelPair{{Key: "domain", Value: "example.com"}}, false)
package doccat
