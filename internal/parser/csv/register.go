package csv

import "csvload/pkg/rowparser"

func init() {
	rowparser.Register(Kind, func(opts rowparser.Options) (rowparser.RowParser, error) {
		p, err := NewParser(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
