package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a9b3/aws-site-deploy/internal/domain/site"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// Executor runs commands against a deploy use case and prints their outcome.
type Executor struct {
	deployer ports.DeployUseCase
	out      io.Writer
}

func NewExecutor(deployer ports.DeployUseCase, out io.Writer) *Executor {
	return &Executor{deployer: deployer, out: out}
}

// Deploy runs a deploy. Whatever was ensured before a failure is printed too.
func (e *Executor) Deploy(ctx context.Context, req site.Request) error {
	result, err := e.deployer.Deploy(ctx, req)
	if result != nil {
		if err != nil {
			fmt.Fprintf(e.out, "\n=== Deploy of %s failed, completed so far ===\n\n", req.FQDN)
		} else {
			fmt.Fprintf(e.out, "\n=== Deployed %s ===\n\n", result.FQDN.Name)
		}
		e.printResult(result)
	}
	return err
}

func (e *Executor) printResult(r *site.Result) {
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(e.out, "  %-14s %s\n", label, value)
		}
	}

	row("hosted zone", r.HostedZoneID)
	if r.CertificateARN != "" {
		row("certificate", fmt.Sprintf("%s (%s, %s)", r.CertificateARN, r.CertificateStatus, createdOrReused(r.CertificateCreated)))
	}
	if r.Bucket != "" {
		row("bucket", fmt.Sprintf("%s (%s)", r.Bucket, createdOrReused(r.BucketCreated)))
		row("files", fmt.Sprintf("%d uploaded", r.FilesUploaded))
	}
	if r.DistributionID != "" {
		row("distribution", fmt.Sprintf("%s %s (%s)", r.DistributionID, r.DistributionDomain, createdOrReused(r.DistributionCreated)))
	}
	row("invalidation", r.InvalidationID)
}

func createdOrReused(created bool) string {
	if created {
		return "created"
	}
	return "reused"
}

// Plan prints what a deploy would do without changing anything.
func (e *Executor) Plan(ctx context.Context, req site.Request) error {
	plan, err := e.deployer.Plan(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "\n=== Plan for %s (hosted zone %s) ===\n\n", plan.FQDN.Name, plan.HostedZoneID)
	fmt.Fprintf(e.out, "%-8s %-14s %-40s %s\n", "ACTION", "RESOURCE", "NAME", "ID")
	fmt.Fprintln(e.out, strings.Repeat("-", 90))

	var toCreate, toReuse int
	for _, c := range plan.Changes {
		fmt.Fprintf(e.out, "%-8s %-14s %-40s %s\n", c.Action, c.Resource, c.Name, c.ID)
		switch c.Action {
		case site.ActionCreate:
			toCreate++
		case site.ActionReuse:
			toReuse++
		}
	}

	fmt.Fprintf(e.out, "\nPlan: %d to create, %d to reuse\n", toCreate, toReuse)
	return nil
}

// Invalidate invalidates paths of the distribution serving fqdn.
func (e *Executor) Invalidate(ctx context.Context, fqdn string, paths []string) error {
	inv, err := e.deployer.Invalidate(ctx, fqdn, paths)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Invalidation %s of %s on distribution %s (%s)\n",
		inv.InvalidationID, strings.Join(inv.Paths, " "), inv.DistributionID, inv.Status)
	return nil
}
