package native

import "fmt"

// ArtifactName builds the file name of a packaged engine artifact.
// Names follow <lib>-v<version>-abi<abi>-<triple>[-legacy]<ext>.tar.gz.
func ArtifactName(lib, version, abi string, triple Triple, variant Variant) string {
	suffix := ""
	if variant != VariantDefault {
		suffix = "-" + string(variant)
	}
	return fmt.Sprintf("%s-v%s-abi%s-%s%s%s.tar.gz", lib, version, abi, triple, suffix, triple.LibExt())
}

// DownloadURL builds the release URL for an artifact. It is a pure
// function of its inputs: identical inputs produce an identical URL.
func DownloadURL(repo, version, name string) string {
	return fmt.Sprintf("%s/releases/download/v%s/%s", repo, version, name)
}

// artifactURL resolves the full URL for the pinned release.
func artifactURL(triple Triple, variant Variant) string {
	return DownloadURL(RepoURL, Version, ArtifactName(LibName, Version, ABIVersion, triple, variant))
}
