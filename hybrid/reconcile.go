// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hybrid

import (
	"context"
	"fmt"
)

// ReconcileReport lists documents present in only one backend. VectorOnly
// entries are orphans from partial writes; GraphOnly entries indicate the
// vector index was rebuilt or its data lost.
type ReconcileReport struct {
	VectorOnly []string
	GraphOnly  []string
}

// Clean reports whether both backends hold the same document set.
func (r *ReconcileReport) Clean() bool {
	return len(r.VectorOnly) == 0 && len(r.GraphOnly) == 0
}

// Reconcile compares the document ids held by each backend. It only
// observes; orphan cleanup stays a manual operation.
func (s *Store) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	vectorIDs, err := s.vector.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vector ids: %w", err)
	}
	graphIDs, err := s.graph.ListDocumentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list graph ids: %w", err)
	}

	inGraph := make(map[string]struct{}, len(graphIDs))
	for _, id := range graphIDs {
		inGraph[id] = struct{}{}
	}
	inVector := make(map[string]struct{}, len(vectorIDs))
	for _, id := range vectorIDs {
		inVector[id] = struct{}{}
	}

	report := &ReconcileReport{}
	for _, id := range vectorIDs {
		if _, ok := inGraph[id]; !ok {
			report.VectorOnly = append(report.VectorOnly, id)
		}
	}
	for _, id := range graphIDs {
		if _, ok := inVector[id]; !ok {
			report.GraphOnly = append(report.GraphOnly, id)
		}
	}

	if !report.Clean() {
		s.logger.Warn("backends diverged",
			"vector_only", len(report.VectorOnly), "graph_only", len(report.GraphOnly))
	}
	return report, nil
}
