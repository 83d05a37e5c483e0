package s3_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a9b3/aws-site-deploy/internal/adapters/memory"
	domain "github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/internal/usecases/s3"
)

var _ = Describe("Bucket use case", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
		site     memory.Files
		uc       ports.S3UseCase
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		site = memory.Files{
			"index.html":       "<html></html>",
			"css/site.css":     "body{}",
			"js/app.js":        "console.log(1)",
			"img/logo.svg":     "<svg/>",
			"data/routes.json": "{}",
		}
		uc = s3.NewBucketUseCase(provider.S3(), site)
	})

	Context("EnsureStaticBucket", func() {
		It("creates a public website bucket", func() {
			created, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("foo.example.com", "us-west-2", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			bucket, ok := provider.Bucket("foo.example.com")
			Expect(ok).To(BeTrue())
			Expect(bucket.Region).To(Equal("us-west-2"))
			Expect(bucket.HasPublicAccessBlocked()).To(BeFalse())
			Expect(bucket.Website).To(Equal(&domain.WebsiteConfig{IndexDocument: "index.html", ErrorDocument: "index.html"}))
			Expect(provider.BucketPolicy("foo.example.com")).To(ContainSubstring(`arn:aws:s3:::foo.example.com/*`))
			Expect(provider.BucketPolicy("foo.example.com")).To(ContainSubstring(`s3:GetObject`))
		})

		It("does not create a second bucket on a second run", func() {
			_, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("foo.example.com", "us-east-1", ""))
			Expect(err).NotTo(HaveOccurred())

			created, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("foo.example.com", "us-east-1", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(provider.Calls("CreateBucket")).To(Equal(1))
		})

		It("trusts an existing bucket as-is", func() {
			provider.AddBucket("a.example.com", "us-east-1")
			provider.AddBucket("b.example.com", "us-east-1")
			provider.AddBucket("foo.example.com", "us-east-1")

			created, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("foo.example.com", "us-east-1", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(provider.Calls("PutBucketPolicy")).To(BeZero())
			Expect(provider.Calls("PutBucketWebsite")).To(BeZero())
		})

		It("rejects an invalid bucket before calling S3", func() {
			_, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("ab", "us-east-1", ""))
			Expect(err).To(MatchError(domain.ErrInvalidBucketNameLength))
			Expect(provider.Calls("ListBuckets")).To(BeZero())
		})

		It("reports the failing configuration step", func() {
			boom := errors.New("boom")
			provider.Fail("PutBucketWebsite", boom)

			created, err := uc.EnsureStaticBucket(ctx, domain.NewStaticSiteBucket("foo.example.com", "us-east-1", ""))
			Expect(created).To(BeTrue())
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(ContainSubstring("failed to configure website"))
		})
	})

	Context("UploadFiles", func() {
		BeforeEach(func() {
			provider.AddBucket("foo.example.com", "us-east-1")
		})

		It("uploads every file with its content type", func() {
			files, err := uc.CollectFiles(ctx, ".")
			Expect(err).NotTo(HaveOccurred())

			n, err := uc.UploadFiles(ctx, "foo.example.com", files)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(site)))
			Expect(provider.ObjectKeys("foo.example.com")).To(ConsistOf(
				"index.html", "css/site.css", "js/app.js", "img/logo.svg", "data/routes.json",
			))

			body, contentType, ok := provider.Object("foo.example.com", "css/site.css")
			Expect(ok).To(BeTrue())
			Expect(body).To(Equal("body{}"))
			Expect(contentType).To(Equal("text/css; charset=utf-8"))
		})

		It("fails the batch when one upload fails", func() {
			boom := errors.New("boom")
			provider.Fail("PutObject:js/app.js", boom)
			files, err := uc.CollectFiles(ctx, ".")
			Expect(err).NotTo(HaveOccurred())

			n, err := uc.UploadFiles(ctx, "foo.example.com", files)
			Expect(err).To(HaveOccurred())
			Expect(n).To(BeNumerically("<", len(files)))

			var uploadErr *domain.UploadError
			Expect(errors.As(err, &uploadErr)).To(BeTrue())
			Expect(uploadErr.Key).To(Equal("js/app.js"))
			Expect(uploadErr.Bucket).To(Equal("foo.example.com"))
			Expect(err).To(MatchError(domain.ErrUploadFailed))
			Expect(err).To(MatchError(boom))
		})

		It("honours a concurrency limit", func() {
			uc = s3.NewBucketUseCase(provider.S3(), site, s3.WithUploadConcurrency(1))
			files, err := uc.CollectFiles(ctx, ".")
			Expect(err).NotTo(HaveOccurred())

			n, err := uc.UploadFiles(ctx, "foo.example.com", files)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(len(files)))
		})

		It("reports a file that cannot be opened", func() {
			files := []domain.Object{{Path: "missing.html", Key: "missing.html"}}

			_, err := uc.UploadFiles(ctx, "foo.example.com", files)
			var uploadErr *domain.UploadError
			Expect(errors.As(err, &uploadErr)).To(BeTrue())
			Expect(uploadErr.Key).To(Equal("missing.html"))
		})

		It("does not report success for a cancelled run", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			files, err := uc.CollectFiles(ctx, ".")
			Expect(err).NotTo(HaveOccurred())

			_, err = uc.UploadFiles(cancelled, "foo.example.com", files)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("uploads only the files under a sub directory", func() {
			files, err := uc.CollectFiles(ctx, "css")
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(files[0].Key).To(Equal("site.css"))
		})
	})
})
