// Package ecpipeline implements the two public entry points of spec §6:
// running the EC pipeline over a bundle and a list of IUCs, and running the
// mapping pipeline over a set of EC-annotated profiles. Both are pure
// functions: given the same input they produce byte-identical artifacts.
package ecpipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/santoshpalla27/ec-resolver/ecmapping"
	"github.com/santoshpalla27/ec-resolver/ecmodel"
	"github.com/santoshpalla27/ec-resolver/ecstep1"
	"github.com/santoshpalla27/ec-resolver/ecstep2"
	"github.com/santoshpalla27/ec-resolver/ecstep3"
	"github.com/santoshpalla27/ec-resolver/ecstep4"
	"github.com/santoshpalla27/ec-resolver/ecvalidate"
)

// ECResult is the successful output of RunECPipeline: the generated
// artifacts keyed by filename, and the ordered list of profile ids produced.
type ECResult struct {
	Artifacts  map[string]any
	ProfileIDs []string
}

// RunECPipeline runs Validation -> Step1 -> Step2 -> (Step3 -> Step4 per
// IUC, in input order), short-circuiting on the first envelope.
// requestID is carried only in envelope details; it never affects artifact
// bytes.
func RunECPipeline(bundle ecmodel.ECBundle, iucs []ecmodel.IUC) (*ECResult, *ecmodel.Envelope) {
	requestID := uuid.NewString()

	if env := ecvalidate.Bundle(bundle); env != nil {
		return nil, withRequestID(env, requestID)
	}
	if env := ecvalidate.IUCs(bundle.Taxonomy, iucs); env != nil {
		return nil, withRequestID(env, requestID)
	}

	step1Result, env := ecstep1.Run(bundle.Taxonomy, bundle.Policy, bundle.AssignedBusinessContext)
	if env != nil {
		return nil, withRequestID(env, requestID)
	}

	oc, env := ecstep2.Run(bundle.Taxonomy, bundle.ComponentGraph, step1Result.Prefiltered)
	if env != nil {
		return nil, withRequestID(env, requestID)
	}

	artifacts := map[string]any{
		"step1-prefiltered.json": step1Result,
		"step2-oc.json":          oc,
	}
	profileIDs := make([]string, 0, len(iucs))

	for _, iuc := range iucs {
		ec, env := ecstep3.Run(bundle.Taxonomy, bundle.ComponentGraph, oc, iuc)
		if env != nil {
			return nil, withRequestID(env, requestID)
		}

		schema, env := ecstep4.Run(bundle.ComponentGraph, ec, iuc.ID)
		if env != nil {
			return nil, withRequestID(env, requestID)
		}

		artifacts[fmt.Sprintf("step3-ec.%s.json", iuc.ID)] = ec
		artifacts[fmt.Sprintf("step4-profile.%s.json", iuc.ID)] = schema
		profileIDs = append(profileIDs, iuc.ID)
	}

	return &ECResult{Artifacts: artifacts, ProfileIDs: profileIDs}, nil
}

// MappingResult is the successful output of RunMappingPipeline.
type MappingResult struct {
	Artifacts map[string]any
}

// RunMappingPipeline runs §4.7 over every configured profile pair, in
// input order.
func RunMappingPipeline(profiles map[string]ecmodel.ProfileBundle, cfg ecmodel.MappingConfig) (*MappingResult, *ecmodel.Envelope) {
	requestID := uuid.NewString()

	normalized := cfg
	normalized.BIECatalog = make(map[string]ecmodel.BIECatalogEntry, len(cfg.BIECatalog))
	for id, entry := range cfg.BIECatalog {
		normalized.BIECatalog[id] = entry
	}
	if env := ecvalidate.MappingConfig(&normalized); env != nil {
		return nil, withRequestID(env, requestID)
	}

	artifacts := map[string]any{}

	for _, pair := range normalized.ProfilePairs {
		source, ok := profiles[pair.SourceProfileID]
		if !ok {
			return nil, withRequestID(ecmodel.NewEnvelope("Validation",
				fmt.Sprintf("mapping profile pair references unknown source profile: %s", pair.SourceProfileID),
				map[string]any{"stage": "profiles"}), requestID)
		}
		target, ok := profiles[pair.TargetProfileID]
		if !ok {
			return nil, withRequestID(ecmodel.NewEnvelope("Validation",
				fmt.Sprintf("mapping profile pair references unknown target profile: %s", pair.TargetProfileID),
				map[string]any{"stage": "profiles"}), requestID)
		}

		mras := ecmapping.RunPair(normalized, source, target)
		mraName, explanationsName := ecmapping.ArtifactNames(pair.SourceProfileID, pair.TargetProfileID)
		artifacts[mraName] = mras
		artifacts[explanationsName] = ecmapping.Explanations(mras)
	}

	return &MappingResult{Artifacts: artifacts}, nil
}

func withRequestID(env *ecmodel.Envelope, requestID string) *ecmodel.Envelope {
	env.Details["requestId"] = requestID
	return env
}
