// Package csvsource adapts a CSV input into a stream of raw rows for a table
// loader.
//
// A Source is built once with New. Setup picks a parser (an injected
// instance, or one constructed from the rowparser registry), opens the input
// (an injected io.Reader, or a file path), and, when explicit column names
// are configured, drops the first row as a header. After that the loader
// pulls rows with ReadRow until io.EOF.
//
//	src, err := csvsource.New(ctx,
//	    csvsource.WithPath("/data/orders.csv"),
//	    csvsource.WithColumns("id", "amount"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	for {
//	    row, err := src.ReadRow()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// No header sniffing is done: with columns set and KeepHeader false, the
// first row is dropped whether or not it looks like a header.
package csvsource
