package config

import (
	"fmt"
	"sort"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

const (
	DatasetZones  = "zones"
	DatasetYellow = "yellow"
)

var builtinDatasets = map[string]Dataset{
	DatasetZones: {
		URL:   "https://d37ci6vzurychx.cloudfront.net/misc/taxi_zone_lookup.csv",
		Table: "zones",
		Columns: csvingest.Schema{
			{Name: "LocationID", Type: csvingest.TypeInteger},
			{Name: "Borough", Type: csvingest.TypeText},
			{Name: "Zone", Type: csvingest.TypeText},
			{Name: "service_zone", Type: csvingest.TypeText},
		},
	},
	DatasetYellow: {
		URL:       "https://github.com/DataTalksClub/nyc-tlc-data/releases/download/yellow/yellow_tripdata_2021-01.csv.gz",
		Table:     "yellow_taxi_data",
		BatchSize: csvingest.DefaultBatchSize,
		Columns: csvingest.Schema{
			{Name: "VendorID", Type: csvingest.TypeInteger},
			{Name: "tpep_pickup_datetime", Type: csvingest.TypeTimestamp},
			{Name: "tpep_dropoff_datetime", Type: csvingest.TypeTimestamp},
			{Name: "passenger_count", Type: csvingest.TypeInteger},
			{Name: "trip_distance", Type: csvingest.TypeFloat},
			{Name: "RatecodeID", Type: csvingest.TypeInteger},
			{Name: "store_and_fwd_flag", Type: csvingest.TypeText},
			{Name: "PULocationID", Type: csvingest.TypeInteger},
			{Name: "DOLocationID", Type: csvingest.TypeInteger},
			{Name: "payment_type", Type: csvingest.TypeInteger},
			{Name: "fare_amount", Type: csvingest.TypeFloat},
			{Name: "extra", Type: csvingest.TypeFloat},
			{Name: "mta_tax", Type: csvingest.TypeFloat},
			{Name: "tip_amount", Type: csvingest.TypeFloat},
			{Name: "tolls_amount", Type: csvingest.TypeFloat},
			{Name: "improvement_surcharge", Type: csvingest.TypeFloat},
			{Name: "total_amount", Type: csvingest.TypeFloat},
			{Name: "congestion_surcharge", Type: csvingest.TypeFloat},
		},
	},
}

// DatasetSource tells where a resolved dataset came from.
type DatasetSource string

const (
	SourceBuiltin DatasetSource = "builtin"
	SourceConfig  DatasetSource = "config"
)

// NamedDataset is a dataset together with its name and origin.
type NamedDataset struct {
	Name   string
	Source DatasetSource
	Dataset
}

// LookupDataset returns the named dataset. A dataset in cfg replaces the
// built-in preset of the same name; cfg may be nil.
func LookupDataset(name string, cfg *FileConfig) (NamedDataset, error) {
	if cfg != nil {
		if ds, ok := cfg.Datasets[name]; ok {
			return NamedDataset{Name: name, Source: SourceConfig, Dataset: ds.clone()}, nil
		}
	}
	if ds, ok := builtinDatasets[name]; ok {
		return NamedDataset{Name: name, Source: SourceBuiltin, Dataset: ds.clone()}, nil
	}
	return NamedDataset{}, fmt.Errorf("unknown dataset %q (available: %v): %w", name, DatasetNames(cfg), csvingest.ErrInvalidConfig)
}

// ListDatasets returns every available dataset sorted by name.
func ListDatasets(cfg *FileConfig) []NamedDataset {
	names := DatasetNames(cfg)
	out := make([]NamedDataset, 0, len(names))
	for _, name := range names {
		ds, err := LookupDataset(name, cfg)
		if err == nil {
			out = append(out, ds)
		}
	}
	return out
}

// DatasetNames returns built-in and configured dataset names, sorted and unique.
func DatasetNames(cfg *FileConfig) []string {
	seen := make(map[string]bool)
	var names []string
	for name := range builtinDatasets {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range cfg.DatasetNames() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (d Dataset) clone() Dataset {
	d.Columns = append(csvingest.Schema(nil), d.Columns...)
	return d
}
