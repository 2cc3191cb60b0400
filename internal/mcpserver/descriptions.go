package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeCheck() string {
	return `Finds method, constructor and catch clause parameters in Java code that are never referenced.

USE WHEN:
- Cleaning up signatures before a refactoring
- Reviewing a change for parameters left behind after an edit
- Checking a snippet of Java source before proposing it

WHAT IS CHECKED:
- Parameters of concrete methods and constructors
- Catch clause parameters, only when check_catch is true
- Never: abstract methods, interface methods, lambda and record
  parameters, or names matching ignore_pattern

INTERPRETING RESULTS:
- Each violation names the file, 1-based line and column, parameter and owner
- kind is method, constructor or catch
- A parameter used only by a nested class or lambda counts as used unless a
  nearer declaration of the same name shadows it
- Overriding methods are still reported; removing the parameter may not be
  possible, suppress it with ignore_pattern instead

METRICS RETURNED:
- Violations: list with file, line, column, name, kind, owner, message
- Summary: files analyzed and skipped, parameters checked, violations by kind,
  mean and standard deviation of violations per file`
}
