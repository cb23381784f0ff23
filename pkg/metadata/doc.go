// Package metadata reads and writes artifact metadata descriptors (".amd"
// files) and translates Maven POM files into the same model.
//
// # Descriptor Format
//
// A descriptor records the compatibility policy of an artifact and the
// dependency groups it declares:
//
//	<artifact-meta-data compatibility="minor">
//	  <dependencies>
//	    <artifact-group type="run">
//	      <artifact group="org.example" project="common" name="common" version="1.0" type="jar"/>
//	    </artifact-group>
//	  </dependencies>
//	</artifact-meta-data>
//
// The legacy attribute name "compatType" is accepted when reading. Unknown
// elements are rejected so that typos never silently drop dependencies.
//
// # POM Translation
//
// Backends that only hold Maven-style repositories have no descriptors.
// [FromPOM] converts the root-level dependencies of a POM into a
// descriptor: "test" scope maps to the "test-run" group, "provided" to
// "compile-only", and everything else to "run". Missing versions become
// "{latest}" and missing types "jar".
package metadata
