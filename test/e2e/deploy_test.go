package e2e_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Static site deploy", Ordered, func() {
	var (
		domain string
		name   string
		source string
	)

	BeforeAll(func() {
		domain = rootDomain()
		name = "www." + domain
		source = GinkgoT().TempDir()
		writeSite(source, "first")
	})

	It("plans to create every resource", func() {
		out, err := run("plan", "--fqdn", name, "-s", source)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("2 files from"))
		Expect(out).To(MatchRegexp(`create\s+bucket\s+` + name))
	})

	It("deploys the site", func() {
		out, err := run("deploy", "--fqdn", name, "-s", source)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Deployed " + name))
		Expect(out).To(ContainSubstring("2 uploaded"))

		Expect(objectBody(name, "index.html")).To(Equal("<h1>first</h1>"))
	})

	It("reuses everything and invalidates on a second deploy", func() {
		writeSite(source, "second")

		out, err := run("deploy", "--fqdn", name, "-s", source)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(ContainSubstring("(created"))
		Expect(out).To(ContainSubstring("invalidation"))

		Expect(objectBody(name, "index.html")).To(Equal("<h1>second</h1>"))
	})

	It("invalidates paths on demand", func() {
		out, err := run("invalidate", "--fqdn", name, "/index.html")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("/index.html"))
	})
})
