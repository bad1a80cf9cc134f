package metrics_test

import (
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

// findMetric returns the sample of family name whose labels contain all of
// the given label pairs.
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if hasLabels(m, labels) {
				return m
			}
		}
	}

	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func hasLabels(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range m.GetLabel() {
		if v, ok := labels[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}
