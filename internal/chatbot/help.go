package chatbot

const HelpText = `AttendBot - available commands

System info:
  help                          show this message

Add student:
  add student <name> <roll_number>
  example: add student Ali 201

Mark attendance:
  mark present <roll_number>    mark a student as present
  mark absent <roll_number>     mark a student as absent
  example: mark present 12

Shortcuts:
  p <roll_number>               quick mark as present
  p all                         mark every student as present
  a <roll_number>               quick mark as absent
  example: p 12, p all, a 5

View attendance:
  show attendance               attendance of every student
  attendance of <roll_number>   attendance of one student
  example: attendance of 12

List students:
  list                          every enrolled student

Delete student:
  delete <roll_number>
  example: delete 12

The roster starts with 20 preloaded students, roll numbers 1-20.`
